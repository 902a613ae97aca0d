package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger           *logger.Logger
	AllowedOrigins   []string
	RateLimitRPS     float64
	RateLimitBurst   int
	DashboardHandler *handler.DashboardHandler
	DialogHandler    *handler.DialogHandler
	ExportHandler    *handler.ExportHandler
	HealthHandler    *handler.HealthHandler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.DashboardHandler != nil {
			r.Get("/dashboard", cfg.DashboardHandler.GetDashboard)
			r.Get("/accounts", cfg.DashboardHandler.GetAccounts)
			r.Get("/transactions", cfg.DashboardHandler.GetTransactions)
			r.Get("/spending", cfg.DashboardHandler.GetSpending)
			r.Get("/charts/category", cfg.DashboardHandler.GetCategoryChart)
			r.Get("/charts/monthly", cfg.DashboardHandler.GetMonthlyChart)
			r.Post("/reload", cfg.DashboardHandler.Reload)
			r.Post("/visibility/toggle", cfg.DashboardHandler.ToggleVisibility)
		}

		if cfg.DialogHandler != nil {
			r.Route("/dialogs/{kind}", func(r chi.Router) {
				r.Get("/", cfg.DialogHandler.GetDialog)
				r.Patch("/", cfg.DialogHandler.Update)
				r.Post("/open", cfg.DialogHandler.Open)
				r.Post("/cancel", cfg.DialogHandler.Cancel)
				r.Post("/submit", cfg.DialogHandler.Submit)
			})
		}

		if cfg.ExportHandler != nil {
			r.Get("/export/transactions.csv", cfg.ExportHandler.GetTransactionsCSV)
			r.Get("/export/accounts.csv", cfg.ExportHandler.GetAccountsCSV)
		}
	})

	return r
}
