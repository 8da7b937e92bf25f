package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/api/schedule"
	"github.com/mferrero/trip-ledger/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

// ScheduleInvalidator drops cached schedules after stay/leg writes.
type ScheduleInvalidator interface {
	Invalidate(itineraryID uuid.UUID)
}

type Service interface {
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	ListItineraries(ctx context.Context) ([]types.Itinerary, error)
	CreateItinerary(ctx context.Context, it types.Itinerary) (uuid.UUID, error)
	DeleteItinerary(ctx context.Context, id uuid.UUID) error

	// ListStays returns the itinerary's stays ordered by the display
	// sort policy (arrival date, then leg arrival time, then typical hour).
	ListStays(ctx context.Context, itineraryID uuid.UUID) ([]types.CityStay, error)
	CreateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error
	UpdateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error
	DeleteStay(ctx context.Context, itineraryID uuid.UUID, stayID int) error

	ListLegs(ctx context.Context, itineraryID uuid.UUID) ([]types.TransportLeg, error)
	CreateLeg(ctx context.Context, itineraryID uuid.UUID, leg types.TransportLeg) (uuid.UUID, error)
	DeleteLeg(ctx context.Context, itineraryID uuid.UUID, legID uuid.UUID) error
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	invalidator ScheduleInvalidator
}

// NewItineraryService creates a new itinerary service instance.
func NewItineraryService(repo Repository, invalidator ScheduleInvalidator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		invalidator: invalidator,
	}
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	it, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itinerary")
		return nil, fmt.Errorf("error fetching itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary fetched")
	return it, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ListItineraries")
	defer span.End()

	out, err := s.repo.ListItineraries(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list itineraries")
		return nil, fmt.Errorf("error listing itineraries: %w", err)
	}
	span.SetStatus(codes.Ok, "Itineraries listed")
	return out, nil
}

func (s *ServiceImpl) CreateItinerary(ctx context.Context, it types.Itinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateItinerary")
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateItinerary"))

	if it.Name == "" {
		return uuid.Nil, fmt.Errorf("itinerary name is required: %w", types.ErrValidation)
	}
	if types.DayOf(it.TripEnd).Before(types.DayOf(it.TripStart)) {
		return uuid.Nil, fmt.Errorf("trip ends before it starts: %w", types.ErrValidation)
	}

	id, err := s.repo.CreateItinerary(ctx, it)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create itinerary")
		return uuid.Nil, fmt.Errorf("error creating itinerary: %w", err)
	}

	l.InfoContext(ctx, "Itinerary created", slog.String("itineraryID", id.String()))
	span.SetStatus(codes.Ok, "Itinerary created")
	return id, nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	if err := s.repo.DeleteItinerary(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete itinerary")
		return fmt.Errorf("error deleting itinerary: %w", err)
	}
	s.invalidator.Invalidate(id)
	span.SetStatus(codes.Ok, "Itinerary deleted")
	return nil
}

func (s *ServiceImpl) ListStays(ctx context.Context, itineraryID uuid.UUID) ([]types.CityStay, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ListStays", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	stays, err := s.repo.ListStays(ctx, itineraryID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list stays")
		return nil, fmt.Errorf("error listing stays: %w", err)
	}
	legs, err := s.repo.ListLegs(ctx, itineraryID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list legs")
		return nil, fmt.Errorf("error listing legs: %w", err)
	}

	span.SetStatus(codes.Ok, "Stays listed")
	return schedule.SortStays(stays, legs), nil
}

func (s *ServiceImpl) CreateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateStay", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.Int("stay.id", stay.ID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateStay"), slog.Int("stayID", stay.ID))

	if err := stay.Validate(); err != nil {
		l.WarnContext(ctx, "Stay rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stay rejected")
		return err
	}

	if err := s.repo.CreateStay(ctx, itineraryID, stay); err != nil {
		l.ErrorContext(ctx, "Failed to create stay", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create stay")
		return fmt.Errorf("error creating stay: %w", err)
	}

	s.invalidator.Invalidate(itineraryID)
	l.InfoContext(ctx, "Stay created", slog.String("city", stay.Name))
	span.SetStatus(codes.Ok, "Stay created")
	return nil
}

func (s *ServiceImpl) UpdateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "UpdateStay", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.Int("stay.id", stay.ID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateStay"), slog.Int("stayID", stay.ID))

	if err := stay.Validate(); err != nil {
		l.WarnContext(ctx, "Stay rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stay rejected")
		return err
	}

	if err := s.repo.UpdateStay(ctx, itineraryID, stay); err != nil {
		l.ErrorContext(ctx, "Failed to update stay", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update stay")
		return fmt.Errorf("error updating stay: %w", err)
	}

	s.invalidator.Invalidate(itineraryID)
	span.SetStatus(codes.Ok, "Stay updated")
	return nil
}

func (s *ServiceImpl) DeleteStay(ctx context.Context, itineraryID uuid.UUID, stayID int) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteStay", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.Int("stay.id", stayID),
	))
	defer span.End()

	if err := s.repo.DeleteStay(ctx, itineraryID, stayID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete stay")
		return fmt.Errorf("error deleting stay: %w", err)
	}
	s.invalidator.Invalidate(itineraryID)
	span.SetStatus(codes.Ok, "Stay deleted")
	return nil
}

func (s *ServiceImpl) ListLegs(ctx context.Context, itineraryID uuid.UUID) ([]types.TransportLeg, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ListLegs", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	legs, err := s.repo.ListLegs(ctx, itineraryID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list legs")
		return nil, fmt.Errorf("error listing legs: %w", err)
	}
	span.SetStatus(codes.Ok, "Legs listed")
	return legs, nil
}

func (s *ServiceImpl) CreateLeg(ctx context.Context, itineraryID uuid.UUID, leg types.TransportLeg) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateLeg", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateLeg"))

	// Legs may reference city ids absent from the stay set (a leg entered
	// before its city, or a transit hop). Consumers skip the dangling end,
	// so no referential check happens here.
	leg.Mode = types.NormalizeMode(string(leg.Mode))

	id, err := s.repo.CreateLeg(ctx, itineraryID, leg)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create leg", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create leg")
		return uuid.Nil, fmt.Errorf("error creating leg: %w", err)
	}

	s.invalidator.Invalidate(itineraryID)
	l.InfoContext(ctx, "Leg created",
		slog.Int("from", leg.FromCityID), slog.Int("to", leg.ToCityID),
		slog.String("mode", string(leg.Mode)))
	span.SetStatus(codes.Ok, "Leg created")
	return id, nil
}

func (s *ServiceImpl) DeleteLeg(ctx context.Context, itineraryID uuid.UUID, legID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteLeg", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.String("leg.id", legID.String()),
	))
	defer span.End()

	if err := s.repo.DeleteLeg(ctx, itineraryID, legID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete leg")
		return fmt.Errorf("error deleting leg: %w", err)
	}
	s.invalidator.Invalidate(itineraryID)
	span.SetStatus(codes.Ok, "Leg deleted")
	return nil
}
