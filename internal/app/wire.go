package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/transferdesk/platform/internal/auth"
	"github.com/transferdesk/platform/internal/export"
	"github.com/transferdesk/platform/internal/guard"
	"github.com/transferdesk/platform/internal/handler"
	"github.com/transferdesk/platform/internal/infra"
	"github.com/transferdesk/platform/internal/repository"
	"github.com/transferdesk/platform/internal/service"
	"github.com/transferdesk/platform/internal/store"
)

// DB is the database handle the application runs on (a *pgxpool.Pool).
type DB interface {
	repository.Database
	Ping(ctx context.Context) error
}

// Deps holds everything New needs from the outside world.
type Deps struct {
	DB     DB
	Config *infra.Config
	Logger *slog.Logger
	// Archive receives a copy of every CSV export. Nil disables archiving.
	Archive export.ObjectStore
}

// App is the assembled API: router plus the long-lived components cmd/api
// has to start, load or sweep.
type App struct {
	Router      chi.Router
	Stores      *store.Stores
	Auth        *service.AuthService
	Limiter     *guard.RateLimiter
	Lockout     *guard.Lockout
	Idempotency *guard.IdempotencyGuard
	Revoked     *auth.RevocationList
}

// New wires repositories, stores, services and handlers and builds the router.
func New(deps Deps) *App {
	db := deps.DB
	cfg := deps.Config
	logger := deps.Logger

	// Repositories
	playerRepo := repository.NewPlayerRepository()
	teamRepo := repository.NewTeamRepository()
	transferRepo := repository.NewTransferRepository()
	userRepo := repository.NewUserRepository()
	outboxRepo := repository.NewOutboxRepository()

	// State stores
	stores := store.New(db, store.Repositories{
		Players:   playerRepo,
		Teams:     teamRepo,
		Transfers: transferRepo,
		Users:     userRepo,
	})

	// Guards
	limiter := guard.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	lockout := guard.NewLockout(db, cfg.LockoutMaxFailed, cfg.LockoutWindow, logger)
	idem := guard.NewIdempotencyGuard(guard.DefaultIdempotencyTTL)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	resetMgr := auth.NewResetTokenManager(cfg.JWTSecret, cfg.ResetTokenTTL)
	revoked := auth.NewRevocationList()

	// Services
	playerSvc := service.NewPlayerService(db, playerRepo, transferRepo, outboxRepo, stores, logger)
	teamSvc := service.NewTeamService(db, teamRepo, playerRepo, outboxRepo, stores, logger)
	transferSvc := service.NewTransferService(db, transferRepo, playerRepo, outboxRepo, stores, logger)
	userSvc := service.NewUserService(db, userRepo, outboxRepo, stores, logger)
	authSvc := service.NewAuthService(db, service.AuthRepos{
		Credentials: repository.NewPgAuthUserRepository(),
		Users:       userRepo,
		Tokens:      repository.NewTokenRepository(),
		Resets:      repository.NewPasswordResetRepository(),
		Outbox:      outboxRepo,
	}, jwtMgr, resetMgr, revoked, lockout, stores, logger)

	// Export archive
	var archive export.Sink
	if deps.Archive != nil {
		archive = export.ArchiveSink{Store: guard.BreakerStore{
			Store:   deps.Archive,
			Breaker: guard.NewCircuitBreaker(3, 30*time.Second),
			Name:    "export_archive",
		}}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, logger)
	profileHandler := handler.NewProfileHandler(userSvc)
	dashboardHandler := handler.NewDashboardHandler(stores)
	playerHandler := handler.NewPlayerHandler(playerSvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	userHandler := handler.NewUserHandler(userSvc)
	exportHandler := handler.NewExportHandler(stores, archive, logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(cfg.AllowedOrigins()...))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(db, stores))

	// Every other route resolves the session gate first.
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(jwtMgr, revoked, userSvc, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Use(handler.RateLimit(limiter, logger))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/password-reset", authHandler.RequestPasswordReset)
			r.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)
			r.With(auth.RequireView(auth.ViewProfile)).Post("/logout", authHandler.Logout)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(auth.RequireView(auth.ViewProfile))
			r.Get("/", profileHandler.Me)
			r.Patch("/", profileHandler.UpdateMe)
		})

		r.With(auth.RequireView(auth.ViewDashboard)).Get("/dashboard", dashboardHandler.Get)
		r.With(auth.RequireView(auth.ViewDashboard)).Get("/dashboard/export", exportHandler.LatestTransfers)

		r.Route("/players", func(r chi.Router) {
			r.Use(auth.RequireView(auth.ViewPlayers))
			r.Get("/", playerHandler.List)
			r.With(handler.Idempotency(idem)).Post("/", playerHandler.Create)
			r.Get("/export", exportHandler.Players)
			r.Get("/{id}", playerHandler.Get)
			r.Put("/{id}", playerHandler.Update)
			r.Delete("/{id}", playerHandler.Delete)
			r.Get("/{id}/transfers", playerHandler.Transfers)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Use(auth.RequireView(auth.ViewTeams))
			r.Get("/", teamHandler.List)
			r.With(handler.Idempotency(idem)).Post("/", teamHandler.Create)
			r.Get("/export", exportHandler.Teams)
			r.Get("/{id}", teamHandler.Get)
			r.Put("/{id}", teamHandler.Update)
			r.Delete("/{id}", teamHandler.Delete)
			r.Get("/{id}/players", teamHandler.Players)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Use(auth.RequireView(auth.ViewTransfers))
			r.Get("/", transferHandler.List)
			r.With(handler.Idempotency(idem)).Post("/", transferHandler.Create)
			r.Get("/export", exportHandler.Transfers)
			r.Get("/{id}", transferHandler.Get)
			r.Put("/{id}", transferHandler.Update)
			r.Delete("/{id}", transferHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireView(auth.ViewUsers))
			r.Get("/", userHandler.List)
			r.Get("/export", exportHandler.Users)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Patch("/{id}/role", userHandler.UpdateRole)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return &App{
		Router:      r,
		Stores:      stores,
		Auth:        authSvc,
		Limiter:     limiter,
		Lockout:     lockout,
		Idempotency: idem,
		Revoked:     revoked,
	}
}
