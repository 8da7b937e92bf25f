package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

// ScheduleProvider yields the day-by-day expansion the country aggregation
// walks. Satisfied by the schedule service.
type ScheduleProvider interface {
	GetSchedule(ctx context.Context, itineraryID uuid.UUID) ([]types.DayRecord, error)
}

// ItineraryGetter supplies the transit policy attached to an itinerary.
type ItineraryGetter interface {
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
}

// ExpenseLister supplies the live expense list for category aggregation.
// Satisfied by the budget repository.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, budgetID uuid.UUID) ([]types.Expense, error)
}

type Service interface {
	// GetCountryStats returns days-per-country with percentage shares,
	// sorted for the visa itinerary view.
	GetCountryStats(ctx context.Context, itineraryID uuid.UUID) ([]types.CountryStat, error)

	// GetCategoryTotals returns spend summed per category id.
	GetCategoryTotals(ctx context.Context, budgetID uuid.UUID) (map[uuid.UUID]float64, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	schedules ScheduleProvider
	trips     ItineraryGetter
	expenses  ExpenseLister
}

func NewStatsService(schedules ScheduleProvider, trips ItineraryGetter, expenses ExpenseLister, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		schedules: schedules,
		trips:     trips,
		expenses:  expenses,
	}
}

func (s *ServiceImpl) GetCountryStats(ctx context.Context, itineraryID uuid.UUID) ([]types.CountryStat, error) {
	ctx, span := otel.Tracer("StatsService").Start(ctx, "GetCountryStats", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetCountryStats"), slog.String("itineraryID", itineraryID.String()))

	it, err := s.trips.GetItinerary(ctx, itineraryID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itinerary")
		return nil, fmt.Errorf("error fetching itinerary: %w", err)
	}

	days, err := s.schedules.GetSchedule(ctx, itineraryID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch schedule", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch schedule")
		return nil, fmt.Errorf("error fetching schedule: %w", err)
	}

	result := AggregateByCountry(days, types.TransitPolicy{ReturnTransitID: it.ReturnTransitID})

	l.InfoContext(ctx, "Country stats aggregated", slog.Int("countries", len(result)))
	span.SetStatus(codes.Ok, "Country stats aggregated")
	return result, nil
}

func (s *ServiceImpl) GetCategoryTotals(ctx context.Context, budgetID uuid.UUID) (map[uuid.UUID]float64, error) {
	ctx, span := otel.Tracer("StatsService").Start(ctx, "GetCategoryTotals", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetCategoryTotals"), slog.String("budgetID", budgetID.String()))

	expenses, err := s.expenses.ListExpenses(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch expenses", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch expenses")
		return nil, fmt.Errorf("error fetching expenses: %w", err)
	}

	totals := AggregateByCategory(expenses)

	l.InfoContext(ctx, "Category totals aggregated", slog.Int("categories", len(totals)))
	span.SetStatus(codes.Ok, "Category totals aggregated")
	return totals, nil
}
