package main

import (
	"net/http"
	"time"

	"github.com/diewo77/viajante/httpx"
	"github.com/diewo77/viajante/internal/analytics"
	"github.com/diewo77/viajante/internal/config"
	"github.com/diewo77/viajante/internal/handlers"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/metrics"
	"github.com/diewo77/viajante/internal/report"
	"github.com/diewo77/viajante/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// routerConfig holds the handlers built from one connection pool.
type routerConfig struct {
	Analytics *handlers.AnalyticsHandler
	Bookings  *handlers.BookingHandler
	Import    *handlers.ImportHandler
	Report    *handlers.ReportHandler
	Assets    *handlers.AssetHandler
	Health    *handlers.HealthHandler
}

func newRouterConfig(db *gorm.DB, cfg *config.Config) *routerConfig {
	analyticsService := analytics.NewService(db)
	renderer := report.NewRenderer(analyticsService, analyticsService.Queries().Report())

	return &routerConfig{
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
		Bookings:  handlers.NewBookingHandler(services.NewBookingService(db)),
		Import:    handlers.NewImportHandler(services.NewImportService(db), cfg.Import.MaxUploadBytes()),
		Report:    handlers.NewReportHandler(renderer),
		Assets:    handlers.NewAssetHandler(cfg.Assets.DashboardPath),
		Health:    handlers.NewHealthHandler(db),
	}
}

// App is the main application handler that sets up all routes.
type App struct {
	router chi.Router
	cfg    *config.Config
	rc     *routerConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config) *App {
	app := &App{
		router: chi.NewRouter(),
		cfg:    cfg,
		rc:     newRouterConfig(db, cfg),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	})

	r.Get("/health", a.rc.Health.Live)
	r.Get("/healthz", a.rc.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Analytical queries
	ah := a.rc.Analytics
	r.Get("/reservas/mensal", ah.MonthlyRollup)
	r.Get("/destinos/top-margem", ah.TopMarginDestinations)
	r.Get("/destinos/rentabilidade", ah.DestinationProfitability)
	r.Get("/clientes/receita_canal", ah.RevenueByChannel)
	r.Get("/clientes/crescimento", ah.SemesterGrowth)
	r.Get("/clientes/fidelidade", ah.LoyaltyScores)

	r.Get("/reservas/listar", a.rc.Bookings.List)

	if limit := a.cfg.Import.RateLimit; limit > 0 {
		r.With(httprate.LimitByIP(limit, time.Minute)).Post("/importar", a.rc.Import.Import)
	} else {
		r.Post("/importar", a.rc.Import.Import)
	}

	r.Get("/generate/sql-report", a.rc.Report.SQLReport)
	r.Get("/download/dashboard_pbix", a.rc.Assets.Dashboard)
}
