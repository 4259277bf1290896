// Package score implements the HTTP handler that accepts a new expense,
// runs it through the cancelability scorer and returns the stored record
// with its classification and warnings.
package score

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
)

// Service is the expense scoring contract.
type Service interface {
	Score(ctx context.Context, username string, req models.RawExpense) (*models.Expense, error)
}

// Handler handles expense scoring requests.
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
// @Summary Score a new expense
// @Description Normalizes the expense attributes, computes the cancelability score and rigidity classification, stores and returns the record.
// @Tags Expenses
// @Accept  json
// @Produce  json
// @Param request body models.RawExpense true "Expense attributes"
// @Success 200 {object} map[string]any "Stored expense with score result"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or out-of-range attribute"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Storage failure"
// @Router /expenses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.score"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RawExpense
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("name", req.Name))

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

	item, err := h.service.Score(r.Context(), username, req)
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			log.Error("invalid expense attributes", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(invalid.Error()))
			return
		}
		log.Error("failed to score expense", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not score expense"))
		return
	}

	log.Info("expense scored", slog.Int("id", item.ID))
	render.JSON(w, r, response.StatusOKWithData(item))
}
