package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Itinerary is the trip header row. Stays and legs hang off it.
type Itinerary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TripStart time.Time `json:"trip_start"`
	TripEnd   time.Time `json:"trip_end"`
	// ReturnTransitID marks the closing leg through the departure hub,
	// e.g. the same airport city used on the way out.
	ReturnTransitID int `json:"return_transit_id"`
}

// Accommodation holds hotel metadata for a stay. A stay without a booking
// carries a nil *Accommodation, never a struct of empty strings.
type Accommodation struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// CityStay is a city's single visit window within the trip.
// IDs at or below zero are reserved for transit-only waypoints
// (intermediate airports, connection hubs).
type CityStay struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Country       string         `json:"country"`
	ArrivalDate   time.Time      `json:"arrival_date"`
	DepartureDate time.Time      `json:"departure_date"`
	Accommodation *Accommodation `json:"accommodation,omitempty"`
}

// Validate checks the interval invariant. A departure before arrival is a
// data-integrity error and is rejected rather than swapped.
func (s CityStay) Validate() error {
	if s.Name == "" || s.Country == "" {
		return fmt.Errorf("stay %d is missing name or country: %w", s.ID, ErrValidation)
	}
	if DayOf(s.DepartureDate).Before(DayOf(s.ArrivalDate)) {
		return fmt.Errorf("stay %d (%s) departs before it arrives: %w", s.ID, s.Name, ErrValidation)
	}
	return nil
}

// ContainsDay reports whether date falls inside [arrival, departure],
// inclusive at both ends, compared as whole calendar days.
func (s CityStay) ContainsDay(date time.Time) bool {
	d := DayOf(date)
	return !d.Before(DayOf(s.ArrivalDate)) && !d.After(DayOf(s.DepartureDate))
}

// DayCount is the stay length in calendar days, both endpoints counted.
func (s CityStay) DayCount() int {
	return int(DayOf(s.DepartureDate).Sub(DayOf(s.ArrivalDate)).Hours()/24) + 1
}

// DayOf truncates a timestamp to its calendar date in UTC. All interval
// arithmetic in the engine goes through this; there is no timezone-aware
// date handling anywhere.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TransportMode is an open enum. Unrecognized values from the data degrade
// to ModeOther instead of erroring.
type TransportMode string

const (
	ModeFlight TransportMode = "flight"
	ModeTrain  TransportMode = "train"
	ModeBus    TransportMode = "bus"
	ModeCar    TransportMode = "car"
	ModeMetro  TransportMode = "metro"
	ModeOther  TransportMode = "other"
)

// NormalizeMode maps free-form transport type strings onto the known set.
func NormalizeMode(raw string) TransportMode {
	switch TransportMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeFlight, ModeTrain, ModeBus, ModeCar, ModeMetro:
		return TransportMode(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return ModeOther
	}
}

// TransportLeg is a directed edge between two city stay ids. The time and
// duration fields come from hand-entered data: some are full timestamps,
// some are placeholders like "morning". They are display data and are never
// parsed except as a best-effort sort key.
type TransportLeg struct {
	ID            uuid.UUID     `json:"id"`
	FromCityID    int           `json:"from_city_id"`
	ToCityID      int           `json:"to_city_id"`
	Mode          TransportMode `json:"mode"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
	Duration      string        `json:"duration"`
}

// TransitPolicy names the stay ids excluded from country-day credit. The
// original data model hard-coded "ids <= 0 are transit"; here the policy is
// a value so callers can extend it with the round-trip return id.
type TransitPolicy struct {
	ReturnTransitID int `json:"return_transit_id"`
}

// IsTransit reports whether a stay id identifies a transit-only waypoint.
func (p TransitPolicy) IsTransit(id int) bool {
	return id <= 0 || (p.ReturnTransitID != 0 && id == p.ReturnTransitID)
}
