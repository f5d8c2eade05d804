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

	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/aussiebroadwan/pressauth/internal/auth/http"
	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/cryptox"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        *sqlite.Store
	brutePool *pgxpool.Pool // only with BRUTE_STORE=postgres
	guard     *bruteforce.Guard

	tokenService        *service.TokenService
	credentialService   *service.CredentialService
	resetService        *service.ResetService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := slogx.InitSentry(cfg.SentryDSN, cfg.Env, BuildVersion); err != nil {
		app.logger.Warn("sentry disabled", "error", err)
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	ctx := slogx.WithContext(context.Background(), app.logger)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initGuard(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.bootstrapService.Seed(ctx); err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	slogx.FlushSentry()

	if err := app.closeStores(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.brutePool != nil {
		app.brutePool.Close()
	}
	return app.db.Close()
}

// initDatabase opens the token database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore("file:" + app.cfg.DatabaseFile + "?_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initGuard selects the brute-force store backend.
func (app *Application) initGuard(ctx context.Context) error {
	var st bruteforce.Store

	switch app.cfg.BruteStore {
	case BruteStoreMemory:
		st = bruteforce.NewMemoryStore()

	case BruteStoreSQLite:
		st = bruteforce.NewSQLStore(app.db.DB())

	case BruteStorePostgres:
		if err := bruteforce.MigratePostgres(ctx, app.cfg.BruteDatabaseURL); err != nil {
			return fmt.Errorf("failed to migrate brute-force store: %w", err)
		}
		pool, err := pgxpool.New(ctx, app.cfg.BruteDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect brute-force store: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return fmt.Errorf("failed to reach brute-force store: %w", err)
		}
		app.brutePool = pool
		st = bruteforce.NewPostgresStore(pool)
	}

	app.guard = bruteforce.NewGuard(st, app.cfg.BruteLimit, app.cfg.BruteWindow)
	app.logger.Info("brute-force guard ready",
		"store", app.cfg.BruteStore,
		"limit", app.cfg.BruteLimit,
		"window", app.cfg.BruteWindow)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:        app.db,
		AccessTTL:    app.cfg.AccessTTL,
		RefreshTTL:   app.cfg.RefreshTTL,
		RefreshGrace: app.cfg.RefreshGrace,
	}
	app.credentialService = &service.CredentialService{Store: app.db}
	app.resetService = &service.ResetService{
		Store:    app.db,
		Notifier: service.LogNotifier{BaseURL: app.cfg.ResetURL},
		ResetTTL: app.cfg.ResetTTL,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:             app.db,
		AdminClientID:     app.cfg.AdminClientID,
		AdminClientSecret: app.cfg.AdminClientSecret,
		OwnerEmail:        app.cfg.OwnerEmail,
		OwnerPassword:     app.cfg.OwnerPassword,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.guard,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.CredentialService = app.credentialService
	router.ResetService = app.resetService
	router.Guard = app.guard
	router.Proxies = proxies
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
