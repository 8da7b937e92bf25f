package itinerary

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/api"
	"github.com/mferrero/trip-ledger/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new itinerary HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListItineraries"))

	out, err := h.service.ListItineraries(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}

func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetItinerary"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	it, err := h.service.GetItinerary(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

func (h *HandlerImpl) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateItinerary"))

	var it types.Itinerary
	if err := api.DecodeJSONBody(w, r, &it); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.CreateItinerary(ctx, it)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *HandlerImpl) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteItinerary"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItinerary(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) ListStays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListStays"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	stays, err := h.service.ListStays(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list stays", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list stays")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, stays)
}

func (h *HandlerImpl) CreateStay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateStay"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	var stay types.CityStay
	if err := api.DecodeJSONBody(w, r, &stay); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CreateStay(ctx, id, stay); err != nil {
		l.ErrorContext(ctx, "Failed to create stay", slog.Any("error", err))
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create stay")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, stay)
}

func (h *HandlerImpl) UpdateStay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateStay"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}
	stayID, err := strconv.Atoi(chi.URLParam(r, "stayID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid stay ID")
		return
	}

	var stay types.CityStay
	if err := api.DecodeJSONBody(w, r, &stay); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	stay.ID = stayID

	if err := h.service.UpdateStay(ctx, id, stay); err != nil {
		l.ErrorContext(ctx, "Failed to update stay", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Stay not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update stay")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, stay)
}

func (h *HandlerImpl) DeleteStay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteStay"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}
	stayID, err := strconv.Atoi(chi.URLParam(r, "stayID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid stay ID")
		return
	}

	if err := h.service.DeleteStay(ctx, id, stayID); err != nil {
		l.ErrorContext(ctx, "Failed to delete stay", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Stay not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete stay")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) ListLegs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListLegs"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	legs, err := h.service.ListLegs(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list legs", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list legs")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, legs)
}

func (h *HandlerImpl) CreateLeg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateLeg"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}

	var leg types.TransportLeg
	if err := api.DecodeJSONBody(w, r, &leg); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	legID, err := h.service.CreateLeg(ctx, id, leg)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create leg", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create leg")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"id": legID.String()})
}

func (h *HandlerImpl) DeleteLeg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteLeg"))

	id, ok := h.itineraryID(w, r)
	if !ok {
		return
	}
	legID, err := uuid.Parse(chi.URLParam(r, "legID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid leg ID")
		return
	}

	if err := h.service.DeleteLeg(ctx, id, legID); err != nil {
		l.ErrorContext(ctx, "Failed to delete leg", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Leg not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete leg")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) itineraryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return uuid.Nil, false
	}
	return id, true
}
