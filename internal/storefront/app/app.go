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

	httpapi "github.com/aussiebroadwan/storefront/internal/storefront/http"
	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/postgres"
	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/mailx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the storefront service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	mailer mailx.Mailer

	// Services
	sessions          *service.SessionService
	accountService    *service.AccountService
	resetService      *service.ResetService
	permissionService *service.PermissionService
	itemService       *service.ItemService
	bootstrapService  *service.BootstrapService
	imageService      *service.ImageService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "storefront",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	app.initMailer()

	if err := app.initServices(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("storefront starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
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

// Shutdown drains HTTP requests and pending reset emails, then closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down storefront...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	mailDone := make(chan struct{})
	go func() {
		app.resetService.Wait()
		close(mailDone)
	}()
	select {
	case <-mailDone:
	case <-ctx.Done():
		app.logger.Warn("gave up waiting for reset emails")
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("storefront stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initMailer() {
	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("SMTP_HOST not set, reset emails will only be logged")
		app.mailer = &mailx.LogMailer{Logger: app.logger}
		return
	}
	app.mailer = mailx.NewSMTPMailer(app.cfg.SMTP)
}

// initServices initializes all business logic services
func (app *Application) initServices(ctx context.Context) error {
	secret := []byte(app.cfg.AppSecret)
	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return fmt.Errorf("failed to create session signer: %w", err)
	}

	app.sessions = &service.SessionService{
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(secret, app.cfg.Issuer, 30*time.Second),
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.SessionTTL,
	}
	app.accountService = &service.AccountService{Store: app.db, Sessions: app.sessions}
	app.resetService = &service.ResetService{
		Store:       app.db,
		Mailer:      app.mailer,
		TTL:         app.cfg.ResetTokenTTL,
		FrontendURL: app.cfg.FrontendURL,
	}
	app.permissionService = &service.PermissionService{Store: app.db}
	app.itemService = &service.ItemService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.imageService = &service.ImageService{
		Store:     app.db,
		Bucket:    app.cfg.S3.Bucket,
		Region:    app.cfg.S3.Region,
		PublicURL: app.cfg.S3.PublicURL,
		TTL:       app.cfg.ImageUploadTTL,
	}
	if app.cfg.S3.Bucket != "" {
		presigner, err := newPresignClient(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		app.imageService.Presigner = presigner
		app.logger.Info("image uploads enabled", "bucket", app.cfg.S3.Bucket)
	}

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions,
		httpx.SessionCookie{Domain: app.cfg.CookieDomain, Secure: app.cfg.CookieSecure},
		app.cfg.RateLimits,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.ResetService = app.resetService
	router.PermissionService = app.permissionService
	router.ItemService = app.itemService
	router.BootstrapService = app.bootstrapService
	router.ImageService = app.imageService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
