// Package list implements the HTTP handler that lists the caller's expenses.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/solvradar/solvency-radar/internal/http/middlewarectx"
	"github.com/solvradar/solvency-radar/internal/http/response"
	"github.com/solvradar/solvency-radar/internal/lib/sl"
	"github.com/solvradar/solvency-radar/internal/models"
)

// Service is the expense listing contract.
type Service interface {
	List(ctx context.Context, username string) ([]*models.Expense, error)
}

// Handler handles expense listing requests.
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
// @Summary List expenses
// @Description Returns all of the caller's expenses with their stored score results.
// @Tags Expenses
// @Produce  json
// @Success 200 {object} map[string]any "Expense list"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Storage failure"
// @Router /expenses/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.list"

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

	items, err := h.service.List(r.Context(), username)
	if err != nil {
		log.Error("failed to list expenses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list expenses"))
		return
	}

	log.Info("expenses listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(items))
}
