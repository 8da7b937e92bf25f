package stats

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

// GetCountryStats handles GET /itineraries/{itineraryID}/stats/countries.
// The response carries the per-country day counts plus the primary
// destination the visa application names.
func (h *HandlerImpl) GetCountryStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetCountryStats"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	countryStats, err := h.service.GetCountryStats(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to aggregate country stats", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to aggregate country stats")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"countries":           countryStats,
		"primary_destination": PrimaryDestination(countryStats),
	})
}

// GetCategoryTotals handles GET /budgets/{budgetID}/stats/categories.
func (h *HandlerImpl) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetCategoryTotals"))

	id, err := uuid.Parse(chi.URLParam(r, "budgetID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid budget ID")
		return
	}

	totals, err := h.service.GetCategoryTotals(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to aggregate category totals", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to aggregate category totals")
		return
	}

	out := make(map[string]float64, len(totals))
	for k, v := range totals {
		out[k.String()] = v
	}
	api.WriteJSONResponse(w, r, http.StatusOK, out)
}
