package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/mferrero/trip-ledger/internal/types"
)

// BuildSchedule expands overlapping city stays into one DayRecord per
// calendar date in [tripStart, tripEnd], both ends inclusive.
//
// A date no stay covers still gets a record with an empty ActiveCities list:
// gaps are a data-entry signal the UI surfaces, not something to drop. A date
// covered by several stays (a travel day where one city's departure equals
// the next city's arrival) lists them all, ordered by the stay comparer.
func BuildSchedule(stays []types.CityStay, legs []types.TransportLeg, tripStart, tripEnd time.Time, policy types.TransitPolicy) ([]types.DayRecord, error) {
	start := types.DayOf(tripStart)
	end := types.DayOf(tripEnd)
	if end.Before(start) {
		return nil, fmt.Errorf("trip ends %s before it starts %s: %w",
			end.Format("2006-01-02"), start.Format("2006-01-02"), types.ErrValidation)
	}
	for _, s := range stays {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	cmp := NewStayComparer(legs)

	var days []types.DayRecord
	idx := 1
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		var active []types.CityStay
		for _, s := range stays {
			if s.ContainsDay(d) {
				active = append(active, s)
			}
		}
		sort.SliceStable(active, func(i, j int) bool {
			return cmp.Less(active[i], active[j])
		})

		transitOnly := len(active) > 0
		for _, s := range active {
			if !policy.IsTransit(s.ID) {
				transitOnly = false
				break
			}
		}

		days = append(days, types.DayRecord{
			Date:          d,
			DayIndex:      idx,
			ActiveCities:  active,
			IsTransitOnly: transitOnly,
		})
		idx++
	}
	return days, nil
}
