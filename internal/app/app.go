package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gmlcli/internal/config"
	apierrors "gmlcli/internal/errors"
	"gmlcli/internal/infrastructure"
	custommw "gmlcli/internal/middleware"
	"gmlcli/internal/services"
	handlers "gmlcli/internal/transport/http"
)

const (
	Version = "1.0.0"
	AppName = "GML Toolkit - Global Market Liquidity Analysis"
)

// BuildTime is set at compile time via -ldflags
var BuildTime = time.Now().Format(time.RFC3339)

// Application wires configuration, services, and the HTTP stack together
type Application struct {
	Config *config.Config
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	Services *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Data       *services.DataService
	Analysis   *services.AnalysisService
	Validation *services.ValidationService
	Health     *services.HealthService
}

// NewApplication creates a new application instance with dependency
// injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths := &config.Paths{
		ExecutableDir: cfg.Paths.ExecutableDir,
		DataDir:       cfg.GetDataDir(),
		ReportsDir:    cfg.GetReportsDir(),
		LogsDir:       cfg.GetLogsDir(),
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
		Services: &ServiceContainer{
			Data:       services.NewDataService(cfg.GetDataDir(), logger),
			Analysis:   services.NewAnalysisService(cfg.Validation, logger),
			Validation: services.NewValidationService(cfg.Validation, logger),
			Health:     services.NewHealthService(Version, BuildTime, cfg.Paths, logger),
		},
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware ordering: RequestID → RealIP → Tracing → Logger → Recoverer
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.NotFound(custommw.NotFoundHandler(a.Logger))
	r.MethodNotAllowed(custommw.MethodNotAllowedHandler(a.Logger))

	r.Group(func(r chi.Router) {
		r.Use(custommw.Tracing("gmlcli"))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Outside the middleware group so scrapes stay cheap
	r.Handle("/metrics", promhttp.Handler())

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	validationHandler := handlers.NewValidationHandler(a.Services.Validation, a.Services.Analysis, errorHandler, a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(a.Services.Analysis, errorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Mount("/health", healthHandler.Routes())
		r.Mount("/validation", validationHandler.Routes())
		r.Mount("/analysis", analysisHandler.Routes())
		r.Get("/version", healthHandler.Version)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. Listen errors cancel the supplied context
// so Run can unwind instead of exiting mid-flight.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.GetDataDir()),
		slog.String("reports_dir", a.Config.GetReportsDir()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application stopped")
	return nil
}

// Run starts the application and blocks until an interrupt signal or a
// fatal server error, then shuts down gracefully
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
