package user

import (
	"log/slog"

	userservice "github.com/Black-And-White-Club/tcr-bot/app/modules/user/application"
	userdb "github.com/Black-And-White-Club/tcr-bot/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the user module.
type Module struct {
	UserService *userservice.UserService
	Repository  userdb.Repository
}

// NewUserModule creates the user directory. tags may be nil.
func NewUserModule(repo userdb.Repository, tags userservice.TagLookup, logger *slog.Logger, metrics observability.Metrics, tracer trace.Tracer) *Module {
	logger.Info("user.NewUserModule called")
	return &Module{
		UserService: userservice.NewUserService(repo, tags, logger, metrics, tracer),
		Repository:  repo,
	}
}
