// Package growth implements the HTTP handler for the compound-growth
// projection.
package growth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/solvradar/solvency-radar/internal/http/response"
	"github.com/solvradar/solvency-radar/internal/lib/sl"
	"github.com/solvradar/solvency-radar/internal/models"
)

// Request carries the projection parameters.
type Request struct {
	MonthlyContribution *float64 `json:"monthly_contribution" validate:"required,gt=0"`
	AnnualReturnPct     *float64 `json:"annual_return_pct" validate:"required,gte=0"`
	Target              *float64 `json:"target" validate:"required,gt=0"`
}

// Service is the projection contract.
type Service interface {
	ProjectGrowth(ctx context.Context, monthlyContribution, annualReturnPct, target float64) (*models.GrowthProjection, error)
}

// Handler handles growth projection requests.
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
// @Summary Compound-growth projection
// @Description Projects months to reach a savings target under compound monthly contributions.
// @Tags Simulations
// @Accept  json
// @Produce  json
// @Param request body Request true "Projection parameters"
// @Success 200 {object} map[string]any "Projection result"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or out-of-range parameter"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Projection failure"
// @Router /simulations/growth [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.simulation.growth"

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

	result, err := h.service.ProjectGrowth(r.Context(), *req.MonthlyContribution, *req.AnnualReturnPct, *req.Target)
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			log.Error("invalid projection parameters", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(invalid.Error()))
			return
		}
		log.Error("failed to run projection", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not run projection"))
		return
	}

	log.Info("growth projection done", slog.Int("months", result.Months))
	render.JSON(w, r, response.StatusOKWithData(result))
}
