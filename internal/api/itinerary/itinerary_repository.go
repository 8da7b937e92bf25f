package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mferrero/trip-ledger/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository is the single persistence surface for trip data. The original
// app shipped five parallel backend adapters exposing the same five
// operations over the same tables; they collapse to this interface with the
// backend chosen at startup.
type Repository interface {
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	ListItineraries(ctx context.Context) ([]types.Itinerary, error)
	CreateItinerary(ctx context.Context, it types.Itinerary) (uuid.UUID, error)
	DeleteItinerary(ctx context.Context, id uuid.UUID) error

	ListStays(ctx context.Context, itineraryID uuid.UUID) ([]types.CityStay, error)
	CreateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error
	UpdateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error
	DeleteStay(ctx context.Context, itineraryID uuid.UUID, stayID int) error

	ListLegs(ctx context.Context, itineraryID uuid.UUID) ([]types.TransportLeg, error)
	CreateLeg(ctx context.Context, itineraryID uuid.UUID, leg types.TransportLeg) (uuid.UUID, error)
	DeleteLeg(ctx context.Context, itineraryID uuid.UUID, legID uuid.UUID) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgxpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *PostgresRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	query := `
        SELECT id, name, trip_start, trip_end, return_transit_id
        FROM itineraries
        WHERE id = $1
    `
	var it types.Itinerary
	if err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.TripStart, &it.TripEnd, &it.ReturnTransitID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}
	return &it, nil
}

func (r *PostgresRepository) ListItineraries(ctx context.Context) ([]types.Itinerary, error) {
	query := `
        SELECT id, name, trip_start, trip_end, return_transit_id
        FROM itineraries
        ORDER BY trip_start
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var out []types.Itinerary
	for rows.Next() {
		var it types.Itinerary
		if err := rows.Scan(&it.ID, &it.Name, &it.TripStart, &it.TripEnd, &it.ReturnTransitID); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateItinerary(ctx context.Context, it types.Itinerary) (uuid.UUID, error) {
	query := `
        INSERT INTO itineraries (name, trip_start, trip_end, return_transit_id)
        VALUES ($1, $2, $3, $4) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		it.Name, types.DayOf(it.TripStart), types.DayOf(it.TripEnd), it.ReturnTransitID,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) DeleteItinerary(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) ListStays(ctx context.Context, itineraryID uuid.UUID) ([]types.CityStay, error) {
	query := `
        SELECT city_id, name, country, arrival_date, departure_date,
               accommodation_name, accommodation_address, accommodation_check_in, accommodation_check_out
        FROM city_stays
        WHERE itinerary_id = $1
        ORDER BY arrival_date, city_id
    `
	rows, err := r.pgpool.Query(ctx, query, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stays: %w", err)
	}
	defer rows.Close()

	var out []types.CityStay
	for rows.Next() {
		var s types.CityStay
		var accName, accAddr, accIn, accOut *string
		if err := rows.Scan(&s.ID, &s.Name, &s.Country, &s.ArrivalDate, &s.DepartureDate,
			&accName, &accAddr, &accIn, &accOut); err != nil {
			return nil, fmt.Errorf("failed to scan stay row: %w", err)
		}
		if accName != nil && *accName != "" {
			s.Accommodation = &types.Accommodation{
				Name:     *accName,
				Address:  deref(accAddr),
				CheckIn:  deref(accIn),
				CheckOut: deref(accOut),
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error {
	accName, accAddr, accIn, accOut := accommodationColumns(stay.Accommodation)
	query := `
        INSERT INTO city_stays (
            itinerary_id, city_id, name, country, arrival_date, departure_date,
            accommodation_name, accommodation_address, accommodation_check_in, accommodation_check_out
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	if _, err := r.pgpool.Exec(ctx, query,
		itineraryID, stay.ID, stay.Name, stay.Country,
		types.DayOf(stay.ArrivalDate), types.DayOf(stay.DepartureDate),
		accName, accAddr, accIn, accOut,
	); err != nil {
		return fmt.Errorf("failed to insert stay: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateStay(ctx context.Context, itineraryID uuid.UUID, stay types.CityStay) error {
	accName, accAddr, accIn, accOut := accommodationColumns(stay.Accommodation)
	query := `
        UPDATE city_stays
        SET name = $3, country = $4, arrival_date = $5, departure_date = $6,
            accommodation_name = $7, accommodation_address = $8,
            accommodation_check_in = $9, accommodation_check_out = $10
        WHERE itinerary_id = $1 AND city_id = $2
    `
	tag, err := r.pgpool.Exec(ctx, query,
		itineraryID, stay.ID, stay.Name, stay.Country,
		types.DayOf(stay.ArrivalDate), types.DayOf(stay.DepartureDate),
		accName, accAddr, accIn, accOut,
	)
	if err != nil {
		return fmt.Errorf("failed to update stay: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stay %d not in itinerary %s: %w", stay.ID, itineraryID, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteStay(ctx context.Context, itineraryID uuid.UUID, stayID int) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM city_stays WHERE itinerary_id = $1 AND city_id = $2`, itineraryID, stayID)
	if err != nil {
		return fmt.Errorf("failed to delete stay: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stay %d not in itinerary %s: %w", stayID, itineraryID, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) ListLegs(ctx context.Context, itineraryID uuid.UUID) ([]types.TransportLeg, error) {
	query := `
        SELECT id, from_city_id, to_city_id, mode, departure_time, arrival_time, duration
        FROM transport_legs
        WHERE itinerary_id = $1
        ORDER BY departure_time, id
    `
	rows, err := r.pgpool.Query(ctx, query, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list legs: %w", err)
	}
	defer rows.Close()

	var out []types.TransportLeg
	for rows.Next() {
		var leg types.TransportLeg
		var mode string
		if err := rows.Scan(&leg.ID, &leg.FromCityID, &leg.ToCityID, &mode,
			&leg.DepartureTime, &leg.ArrivalTime, &leg.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan leg row: %w", err)
		}
		leg.Mode = types.NormalizeMode(mode)
		out = append(out, leg)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateLeg(ctx context.Context, itineraryID uuid.UUID, leg types.TransportLeg) (uuid.UUID, error) {
	query := `
        INSERT INTO transport_legs (
            itinerary_id, from_city_id, to_city_id, mode, departure_time, arrival_time, duration
        ) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		itineraryID, leg.FromCityID, leg.ToCityID, string(types.NormalizeMode(string(leg.Mode))),
		leg.DepartureTime, leg.ArrivalTime, leg.Duration,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert leg: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) DeleteLeg(ctx context.Context, itineraryID uuid.UUID, legID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM transport_legs WHERE itinerary_id = $1 AND id = $2`, itineraryID, legID)
	if err != nil {
		return fmt.Errorf("failed to delete leg: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leg %s not in itinerary %s: %w", legID, itineraryID, types.ErrNotFound)
	}
	return nil
}

func accommodationColumns(a *types.Accommodation) (name, addr, checkIn, checkOut *string) {
	if a == nil {
		return nil, nil, nil, nil
	}
	return &a.Name, &a.Address, &a.CheckIn, &a.CheckOut
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
