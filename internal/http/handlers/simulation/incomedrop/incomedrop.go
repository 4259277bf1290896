// Package incomedrop implements the HTTP handler for the income-drop
// stress test.
package incomedrop

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/solvradar/solvency-radar/internal/http/middlewarectx"
	"github.com/solvradar/solvency-radar/internal/http/response"
	"github.com/solvradar/solvency-radar/internal/lib/sl"
	"github.com/solvradar/solvency-radar/internal/models"
	"github.com/solvradar/solvency-radar/internal/storage/repository"
)

// Request carries the stress-test parameters. FixedTotal overrides the
// aggregated fixed total when present.
type Request struct {
	DropPct    *float64 `json:"drop_pct" validate:"required,gte=0,lte=1"`
	FixedTotal *float64 `json:"fixed_total" validate:"omitempty,gte=0"`
}

// Service is the stress-test contract.
type Service interface {
	SimulateIncomeDrop(ctx context.Context, username string, dropPct float64, fixedTotal *float64) (*models.IncomeDropResult, error)
}

// Handler handles income-drop simulation requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Income-drop stress test
// @Description Simulates an income reduction against the caller's fixed costs.
// @Tags Simulations
// @Accept  json
// @Produce  json
// @Param request body Request true "Simulation parameters"
// @Success 200 {object} map[string]any "Simulation result"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or out-of-range parameter"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Simulation failure"
// @Router /simulations/income-drop [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.simulation.incomedrop"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.SimulateIncomeDrop(r.Context(), username, *req.DropPct, req.FixedTotal)
	if err != nil {
		var invalid *models.InvalidInputError
		switch {
		case errors.As(err, &invalid):
			log.Error("invalid simulation parameters", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(invalid.Error()))
		case errors.Is(err, repository.ErrProfileNotFound):
			log.Info("profile not found", slog.String("username", username))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
		default:
			log.Error("failed to run simulation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not run simulation"))
		}
		return
	}

	log.Info("income-drop simulation done", slog.Bool("breaks", result.Breaks))
	render.JSON(w, r, response.StatusOKWithData(result))
}
