package types

import "time"

// DayRecord is one calendar date within the trip span. Derived, never stored.
type DayRecord struct {
	Date          time.Time  `json:"date"`
	DayIndex      int        `json:"day_index"` // 1-based from trip start
	ActiveCities  []CityStay `json:"active_cities"`
	IsTransitOnly bool       `json:"is_transit_only"`
}

// CountryStat aggregates non-transit days credited to one country.
// Percentage is days over the count of eligible days, not over trip length;
// on cross-border travel days both countries are credited, so percentages
// can legitimately sum past 100.
type CountryStat struct {
	Country    string  `json:"country"`
	Days       int     `json:"days"`
	Percentage float64 `json:"percentage"`
}
