package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	httpapi "github.com/tradepost/tradepost-auth/internal/auth/http"
	"github.com/tradepost/tradepost-auth/internal/auth/metrics"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/internal/auth/store/drivers/sqlite"
	"github.com/tradepost/tradepost-auth/pkg/cryptox"
	"github.com/tradepost/tradepost-auth/pkg/idx"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/ratelimit"
	"github.com/tradepost/tradepost-auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	signer  *jwtx.HS256
	limiter *ratelimit.Memory

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	resetService        *service.PasswordResetService
	membershipService   *service.MembershipService
	securityService     *service.SecurityService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tradepost-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	signer, err := jwtx.NewHS256(cfg.TokenSecret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	metrics.Init()

	app.initServices()

	if err := app.seedAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// seedAdmin creates the configured admin account on first boot. Admin and
// publisher accounts cannot self-register, so this is how the first operator
// account comes into existence. A no-op when the account already exists or
// when no admin credentials are configured.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	hash, err := cryptox.HashPassword(app.cfg.AdminPassword)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(app.cfg.AdminEmail)),
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := app.db.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	app.logger.Info("seeded admin account", "email", u.Email)
	return nil
}

// Run starts the application and blocks until shutdown is requested.
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

// Shutdown gracefully shuts down the application.
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

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.limiter = ratelimit.NewMemory(app.cfg.AttemptLimits())

	app.securityService = &service.SecurityService{
		Store:  app.db,
		Logger: app.logger,
	}

	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Limiter:    app.limiter,
		Security:   app.securityService,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Security: app.securityService,
	}

	app.resetService = &service.PasswordResetService{
		Signer:   app.signer,
		Store:    app.db,
		Limiter:  app.limiter,
		Security: app.securityService,
		Delivery: &logResetDelivery{logger: app.logger},
		Issuer:   app.cfg.Issuer,
		ResetTTL: app.cfg.ResetTTL,
	}

	app.membershipService = &service.MembershipService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.EventRetention,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.MaxBodyBytes,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.PasswordResetService = app.resetService
	router.MembershipService = app.membershipService
	router.SecurityService = app.securityService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// logResetDelivery writes reset tokens to the server log. Production wires a
// mail sender here; the auth core itself never returns the token to the
// caller.
type logResetDelivery struct {
	logger *slog.Logger
}

func (d *logResetDelivery) DeliverResetToken(_ context.Context, email, token string) error {
	d.logger.Info("password reset token issued", "email", email, "token", token)
	return nil
}
