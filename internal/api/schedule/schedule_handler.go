package schedule

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/api"
	"github.com/mferrero/trip-ledger/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// GetSchedule handles GET /itineraries/{itineraryID}/schedule.
func (h *HandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetSchedule"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	days, err := h.service.GetSchedule(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to build schedule", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build schedule")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, days)
}
