// Package upsert implements the HTTP handler that saves the caller's
// financial profile.
package upsert

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

// Service is the profile persistence contract.
type Service interface {
	SaveProfile(ctx context.Context, username string, req models.RawProfile) (*models.Profile, error)
}

// Handler handles profile upsert requests.
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
// @Summary Save the financial profile
// @Description Creates or replaces the caller's financial baseline (income floor, reserve, debt service).
// @Tags Profile
// @Accept  json
// @Produce  json
// @Param request body models.RawProfile true "Profile data"
// @Success 200 {object} map[string]any "Stored profile"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON or out-of-range field"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Storage failure"
// @Router /profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.upsert"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RawProfile
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

	profile, err := h.service.SaveProfile(r.Context(), username, req)
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			log.Error("invalid profile data", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(invalid.Error()))
			return
		}
		log.Error("failed to save profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save profile"))
		return
	}

	log.Info("profile saved", slog.String("username", username))
	render.JSON(w, r, response.StatusOKWithData(profile))
}
