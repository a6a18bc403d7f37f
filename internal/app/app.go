package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"thesis-manager/internal/cache"
	"thesis-manager/internal/config"
	"thesis-manager/internal/database"
	"thesis-manager/internal/handler"
	"thesis-manager/internal/mailer"
	"thesis-manager/internal/middleware"
	"thesis-manager/internal/model"
	"thesis-manager/internal/queue"
	"thesis-manager/internal/repository"
	"thesis-manager/internal/router"
	"thesis-manager/internal/security"
	"thesis-manager/internal/service"
	"thesis-manager/internal/validation"
)

type App struct {
	server       *http.Server
	worker       *queue.Worker
	cleanupFuncs []func()
}

type backends struct {
	sessions cache.Cache[model.SessionRecord]
	otps     cache.Cache[model.OTPRecord]
	jobs     interface {
		queue.Enqueuer
		queue.Source
	}
	health map[string]handler.HealthCheck
	close  func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	adminRepo := repository.NewAdminRepository(db)
	userRepo := repository.NewUserRepository(db)
	slog.Info("database ready")

	be, err := newBackends(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	be.health["database"] = db.Health

	tokens, err := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		be.close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	var sender mailer.Sender = mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set; emails will only be logged")
		sender = mailer.LogSender{}
	}
	dispatcher := mailer.NewDispatcher(be.jobs)
	templates := mailer.Templates{App: cfg.AppName}

	worker := queue.NewWorker(be.jobs, queue.WorkerConfig{
		Concurrency:    cfg.EmailWorkers,
		MaxAttempts:    cfg.EmailMaxAttempts,
		InitialBackoff: cfg.EmailInitialBackoff,
	})
	worker.Handle(mailer.JobTypeSendEmail, mailer.Handler(sender))

	sessions := service.NewSessionStore(be.sessions, cfg.SessionTTL)
	authService := service.NewAuthService(adminRepo, userRepo, sessions, tokens)
	passwordService := service.NewPasswordService(adminRepo, userRepo, be.otps, cfg.OTPTTL, dispatcher, templates)
	accountService := service.NewAccountService(adminRepo, userRepo, sessions, dispatcher, templates)

	if err := accountService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		be.close()
		db.Close()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	validator := validation.New()
	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewAuthHandler(authService, accountService, validator),
		handler.NewPasswordHandler(passwordService, validator),
		handler.NewAccountHandler(accountService, validator),
		handler.NewHealthHandler(be.health),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		worker: worker,
		cleanupFuncs: []func(){
			be.close,
			db.Close,
		},
	}, nil
}

// newBackends connects the session cache, otp cache and email queue, either
// to Redis or to in-process implementations.
func newBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	if cfg.UseMemoryBackends() {
		slog.Warn("using in-memory caches and queue; sessions do not survive restarts")
		return &backends{
			sessions: cache.NewMemoryCache[model.SessionRecord](),
			otps:     cache.NewMemoryCache[model.OTPRecord](),
			jobs:     queue.NewMemoryQueue(1024),
			health:   map[string]handler.HealthCheck{},
			close:    func() {},
		}, nil
	}

	rc, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &backends{
		sessions: cache.NewRedisCache[model.SessionRecord](rc),
		otps:     cache.NewRedisCache[model.OTPRecord](rc),
		jobs:     queue.NewRedisQueue(rc, cfg.EmailQueueKey),
		health: map[string]handler.HealthCheck{
			"redis": func(ctx context.Context) error { return rc.Ping(ctx).Err() },
		},
		close: func() { closeRedis(rc) },
	}, nil
}

func closeRedis(rc *redis.Client) {
	if err := rc.Close(); err != nil {
		slog.Warn("closing redis client", "error", err)
	}
}

func (a *App) Run() error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.worker.Run(workerCtx)
	}()

	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	stopWorker()
	select {
	case <-workerDone:
	case <-ctx.Done():
		slog.Warn("email worker did not stop before the shutdown deadline")
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
