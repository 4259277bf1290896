// Package monthly implements the HTTP handler that returns the caller's
// monthly risk report.
package monthly

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/solvradar/solvency-radar/internal/http/middlewarectx"
	"github.com/solvradar/solvency-radar/internal/http/response"
	"github.com/solvradar/solvency-radar/internal/lib/sl"
	"github.com/solvradar/solvency-radar/internal/models"
	"github.com/solvradar/solvency-radar/internal/storage/repository"
)

// Service is the report generation contract.
type Service interface {
	MonthlyReport(ctx context.Context, username string) (*models.MonthlyRiskReport, error)
}

// Handler handles monthly report requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Monthly risk report
// @Description Aggregates the profile and all classified expenses into portfolio-level risk indicators.
// @Tags Reports
// @Produce  json
// @Success 200 {object} map[string]any "Risk report"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 500 {object} response.ErrorResponse "Aggregation failure"
// @Router /report/monthly [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.monthly"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	report, err := h.service.MonthlyReport(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			log.Info("profile not found", slog.String("username", username))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
			return
		}
		log.Error("failed to build report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build report"))
		return
	}

	log.Info("report generated", slog.String("overall", report.OverallRisk.Level))
	render.JSON(w, r, response.StatusOKWithData(report))
}
