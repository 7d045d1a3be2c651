// Package server is the REST transport over the round, leaderboard, score and
// user services.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RoundService is the round lifecycle as seen by the transport.
type RoundService interface {
	GetRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error)
	GetRounds(ctx context.Context, limit, offset int) ([]*roundtypes.Round, error)
	ScheduleRound(ctx context.Context, input roundservice.ScheduleRoundInput) (*roundtypes.Round, error)
	EditRound(ctx context.Context, roundID sharedtypes.RoundID, input roundservice.EditRoundInput) (*roundtypes.Round, error)
	JoinRound(ctx context.Context, input roundservice.JoinRoundInput) (*roundtypes.Round, error)
	UpdateParticipantResponse(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) (*roundtypes.Round, error)
	StartRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error)
	SubmitScore(ctx context.Context, input roundservice.SubmitScoreInput) (*roundtypes.Round, error)
	FinalizeAndProcessScores(ctx context.Context, roundID sharedtypes.RoundID) (*roundservice.FinalizeResult, error)
	DeleteRound(ctx context.Context, roundID sharedtypes.RoundID, requesterID sharedtypes.DiscordID) (bool, error)
}

// LeaderboardService is the tag ranking engine as seen by the transport.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, page, limit int) ([]leaderboardtypes.LeaderboardEntry, error)
	GetUserTag(ctx context.Context, userID sharedtypes.DiscordID) (*leaderboardtypes.LeaderboardEntry, error)
	GetUserByTagNumber(ctx context.Context, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	LinkTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	UpdateTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	ProcessScores(ctx context.Context, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error)
}

// ScoreService is the score ledger as seen by the transport.
type ScoreService interface {
	GetUserScore(ctx context.Context, userID sharedtypes.DiscordID, roundID sharedtypes.RoundID) (*sharedtypes.ScoreInfo, error)
	GetScoresForRound(ctx context.Context, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error)
	UpdateScore(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error
	ProcessScores(ctx context.Context, roundID sharedtypes.RoundID, scores []sharedtypes.ScoreInfo) error
}

// UserService is the user directory as seen by the transport.
type UserService interface {
	GetUserByDiscordID(ctx context.Context, userID sharedtypes.DiscordID) (*usertypes.UserData, error)
	GetUserRole(ctx context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error)
	CreateUser(ctx context.Context, data usertypes.UserData) (*usertypes.UserData, error)
	UpdateUserRole(ctx context.Context, requesterID, targetID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error
}

// Config holds transport settings.
type Config struct {
	JWTSecret string
	// AllowHeaderAuth trusts X-Discord-ID when JWTSecret is empty.
	AllowHeaderAuth bool
	RateLimit       float64
	RateBurst       int
	AllowedOrigins  []string
}

// Deps are the services the transport calls.
type Deps struct {
	Rounds      RoundService
	Leaderboard LeaderboardService
	Scores      ScoreService
	Users       UserService
	// Swaps receives tag swap requests. Nil disables POST /leaderboard/swaps.
	Swaps    message.Publisher
	Gatherer prometheus.Gatherer
	// HealthChecks are run by GET /healthz, keyed by name.
	HealthChecks map[string]HealthChecker
}

// Server routes HTTP requests to the services.
type Server struct {
	rounds      RoundService
	leaderboard LeaderboardService
	scores      ScoreService
	users       UserService
	swaps       message.Publisher
	gatherer    prometheus.Gatherer
	health      map[string]HealthChecker
	auth        *Authenticator
	limiter     *IPRateLimiter
	origins     []string
	logger      *slog.Logger
}

// New creates a Server.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	var limiter *IPRateLimiter
	if cfg.RateLimit > 0 {
		limiter = NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	auth := NewAuthenticator(cfg.JWTSecret, cfg.AllowHeaderAuth)
	switch {
	case auth.HeaderMode():
		logger.Warn("JWT secret not set, trusting the X-Discord-ID header")
	case cfg.JWTSecret == "":
		logger.Error("JWT secret not set and header auth disabled, rejecting all authenticated requests")
	}
	return &Server{
		rounds:      deps.Rounds,
		leaderboard: deps.Leaderboard,
		scores:      deps.Scores,
		users:       deps.Users,
		swaps:       deps.Swaps,
		gatherer:    gatherer,
		health:      deps.HealthChecks,
		auth:        auth,
		limiter:     limiter,
		origins:     cfg.AllowedOrigins,
		logger:      logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(CORSMiddleware(s.origins))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimitMiddleware(s.limiter))
		}

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/", s.listRounds)
			r.Get("/{roundID}", s.getRound)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Post("/", s.scheduleRound)
				r.Patch("/{roundID}", s.editRound)
				r.Delete("/{roundID}", s.deleteRound)
				r.Post("/{roundID}/join", s.joinRound)
				r.Put("/{roundID}/participants/{discordID}", s.updateParticipant)
				r.Post("/{roundID}/start", s.startRound)
				r.Post("/{roundID}/scores", s.submitScore)
				r.Post("/{roundID}/finalize", s.finalizeRound)
			})
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", s.getLeaderboard)
			r.Get("/tags/{discordID}", s.getUserTag)
			r.Get("/holders/{tag}", s.getTagHolder)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Post("/swaps", s.requestSwap)
				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(usertypes.UserRoleAdmin))
					r.Put("/tags/{discordID}", s.updateTag)
					r.Post("/link", s.linkTag)
					r.Post("/process", s.processLeaderboard)
				})
			})
		})

		r.Route("/scores", func(r chi.Router) {
			r.Get("/{roundID}", s.getRoundScores)
			r.Get("/{roundID}/{discordID}", s.getUserScore)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Use(s.requireRole(usertypes.UserRoleAdmin))
				r.Put("/{roundID}/{discordID}", s.updateScore)
				r.Post("/{roundID}/process", s.processRoundScores)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{discordID}", s.getUser)
			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Post("/", s.createUser)
				r.Put("/{discordID}/role", s.updateUserRole)
			})
		})
	})

	return r
}

// requireRole allows the request only if the requester holds one of roles.
func (s *Server) requireRole(roles ...usertypes.UserRoleEnum) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, _ := RequesterFromContext(r.Context())
			role, err := s.users.GetUserRole(r.Context(), requester)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSON(w, http.StatusForbidden, errorBody{Error: "insufficient role"})
		})
	}
}

// canManageRound reports whether requester created the round or holds a
// round-managing role.
func (s *Server) canManageRound(ctx context.Context, round *roundtypes.Round, requester sharedtypes.DiscordID) (bool, error) {
	if round.CreatedBy == requester {
		return true, nil
	}
	role, err := s.users.GetUserRole(ctx, requester)
	if err != nil {
		return false, err
	}
	return role.CanManageRounds(), nil
}
