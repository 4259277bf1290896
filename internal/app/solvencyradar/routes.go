// Package solvencyradar provides the route registration for the main service.
package solvencyradar

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/solvradar/solvency-radar/internal/http/handlers/auth/login"
	"github.com/solvradar/solvency-radar/internal/http/handlers/auth/register"
	"github.com/solvradar/solvency-radar/internal/http/handlers/expense/list"
	"github.com/solvradar/solvency-radar/internal/http/handlers/expense/remove"
	"github.com/solvradar/solvency-radar/internal/http/handlers/expense/score"
	"github.com/solvradar/solvency-radar/internal/http/handlers/health"
	"github.com/solvradar/solvency-radar/internal/http/handlers/profile/upsert"
	"github.com/solvradar/solvency-radar/internal/http/handlers/report/monthly"
	"github.com/solvradar/solvency-radar/internal/http/handlers/simulation/growth"
	"github.com/solvradar/solvency-radar/internal/http/handlers/simulation/incomedrop"
	"github.com/solvradar/solvency-radar/internal/http/middlewarectx"
	authservice "github.com/solvradar/solvency-radar/internal/services/auth"
	expenseservice "github.com/solvradar/solvency-radar/internal/services/expense"
	riskservice "github.com/solvradar/solvency-radar/internal/services/risk"
)

// RegisterRoutes registers all of the application's routes.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.Service,
	expenseService *expenseservice.Service, riskService *riskservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// JWT-protected group
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/expenses", score.New(logger, expenseService).ServeHTTP)
			r.Get("/expenses/list", list.New(logger, expenseService).ServeHTTP)
			r.Delete("/expenses/{id}", remove.New(logger, expenseService).ServeHTTP)
			r.Put("/profile", upsert.New(logger, riskService).ServeHTTP)
			r.Get("/report/monthly", monthly.New(logger, riskService).ServeHTTP)
			r.Post("/simulations/income-drop", incomedrop.New(logger, riskService).ServeHTTP)
			r.Post("/simulations/growth", growth.New(logger, riskService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
