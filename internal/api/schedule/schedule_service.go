package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/mferrero/trip-ledger/app/observability/metrics"
	"github.com/mferrero/trip-ledger/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

// ItineraryReader is the slice of the itinerary repository this service
// needs: the trip window plus the raw stay and leg rows.
type ItineraryReader interface {
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	ListStays(ctx context.Context, itineraryID uuid.UUID) ([]types.CityStay, error)
	ListLegs(ctx context.Context, itineraryID uuid.UUID) ([]types.TransportLeg, error)
}

type Service interface {
	// GetSchedule returns the day-by-day expansion of an itinerary,
	// one DayRecord per calendar date of the trip span.
	GetSchedule(ctx context.Context, itineraryID uuid.UUID) ([]types.DayRecord, error)

	// Invalidate drops any cached schedule for the itinerary. Called by the
	// itinerary service after stay/leg writes.
	Invalidate(itineraryID uuid.UUID)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    ItineraryReader
	cache   *cache.Cache
	metrics *metrics.AppMetrics // nil in tests
}

// NewScheduleService creates a schedule service instance. Built schedules
// are memoized briefly since the UI requests the same expansion for the
// map, the timeline and the printable itinerary in quick succession.
func NewScheduleService(repo ItineraryReader, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		metrics: m,
	}
}

func (s *ServiceImpl) GetSchedule(ctx context.Context, itineraryID uuid.UUID) ([]types.DayRecord, error) {
	ctx, span := otel.Tracer("ScheduleService").Start(ctx, "GetSchedule", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetSchedule"), slog.String("itineraryID", itineraryID.String()))

	if cached, ok := s.cache.Get(itineraryID.String()); ok {
		l.DebugContext(ctx, "Schedule served from cache")
		span.SetStatus(codes.Ok, "Schedule served from cache")
		return cached.([]types.DayRecord), nil
	}

	it, err := s.repo.GetItinerary(ctx, itineraryID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itinerary")
		return nil, fmt.Errorf("error fetching itinerary: %w", err)
	}

	stays, err := s.repo.ListStays(ctx, itineraryID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch stays", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch stays")
		return nil, fmt.Errorf("error fetching stays: %w", err)
	}

	legs, err := s.repo.ListLegs(ctx, itineraryID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch legs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch legs")
		return nil, fmt.Errorf("error fetching legs: %w", err)
	}

	buildStart := time.Now()
	policy := types.TransitPolicy{ReturnTransitID: it.ReturnTransitID}
	days, err := BuildSchedule(stays, legs, it.TripStart, it.TripEnd, policy)
	if s.metrics != nil {
		s.metrics.ScheduleBuildsTotal.Add(ctx, 1)
		s.metrics.ScheduleBuildDurationSeconds.Record(ctx, time.Since(buildStart).Seconds())
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to build schedule", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build schedule")
		return nil, fmt.Errorf("error building schedule: %w", err)
	}

	s.cache.SetDefault(itineraryID.String(), days)

	l.InfoContext(ctx, "Schedule built", slog.Int("days", len(days)), slog.Int("stays", len(stays)))
	span.SetStatus(codes.Ok, "Schedule built")
	return days, nil
}

func (s *ServiceImpl) Invalidate(itineraryID uuid.UUID) {
	s.cache.Delete(itineraryID.String())
}
