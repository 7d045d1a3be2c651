package score

import (
	"log/slog"

	scoreservice "github.com/Black-And-White-Club/tcr-bot/app/modules/score/application"
	scoredb "github.com/Black-And-White-Club/tcr-bot/app/modules/score/infrastructure/repositories"
	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the score module.
type Module struct {
	ScoreService *scoreservice.ScoreService
}

// NewScoreModule creates the score ledger.
func NewScoreModule(db *bun.DB, repo scoredb.Repository, rounds scoreservice.RoundStates, logger *slog.Logger, metrics observability.Metrics, tracer trace.Tracer) *Module {
	logger.Info("score.NewScoreModule called")
	return &Module{
		ScoreService: scoreservice.NewScoreService(repo, rounds, logger, metrics, tracer, db),
	}
}
