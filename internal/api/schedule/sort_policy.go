package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/mferrero/trip-ledger/internal/types"
)

// DefaultArrivalHour is assumed when neither a transport leg nor the typical
// arrival table can place a stay's arrival within its first day.
const DefaultArrivalHour = 12

// typicalArrivalHours covers cities whose source legs carry only textual
// placeholders ("morning", "late evening") instead of parseable times.
var typicalArrivalHours = map[string]int{
	"Lisbon":    9,
	"Madrid":    10,
	"Barcelona": 11,
	"Paris":     10,
	"Amsterdam": 9,
	"Berlin":    14,
	"Prague":    13,
	"Vienna":    11,
	"Budapest":  15,
	"Rome":      14,
	"Milan":     10,
	"Zurich":    9,
}

// arrivalTimeLayouts are tried in order against the free-text leg times.
var arrivalTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"15:04",
	"3:04 PM",
	"3:04PM",
}

// StayComparer orders city stays for display and routing.
//
// Primary key is the arrival date. When two stays arrive the same day the
// arrival time of the transport leg ending at the stay breaks the tie; legs
// with unparseable time text fall back to the typical-arrival table, then to
// DefaultArrivalHour. The comparer never errors on bad time text, and a full
// tie keeps input order (callers must sort stably).
type StayComparer struct {
	legArrival map[int]string // toCityID -> free-text arrival time
}

func NewStayComparer(legs []types.TransportLeg) *StayComparer {
	c := &StayComparer{legArrival: make(map[int]string, len(legs))}
	for _, leg := range legs {
		if _, dup := c.legArrival[leg.ToCityID]; !dup {
			c.legArrival[leg.ToCityID] = leg.ArrivalTime
		}
	}
	return c
}

// Less reports whether a sorts before b.
func (c *StayComparer) Less(a, b types.CityStay) bool {
	ad, bd := types.DayOf(a.ArrivalDate), types.DayOf(b.ArrivalDate)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	return c.arrivalMinute(a) < c.arrivalMinute(b)
}

// SortStays orders a copy of stays by the policy. The sort is stable, so
// stays that tie on every key keep their input order.
func SortStays(stays []types.CityStay, legs []types.TransportLeg) []types.CityStay {
	cmp := NewStayComparer(legs)
	out := make([]types.CityStay, len(stays))
	copy(out, stays)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp.Less(out[i], out[j])
	})
	return out
}

// arrivalMinute resolves a stay's arrival as minutes after midnight.
func (c *StayComparer) arrivalMinute(s types.CityStay) int {
	if raw, ok := c.legArrival[s.ID]; ok {
		if m, ok := parseMinuteOfDay(raw); ok {
			return m
		}
	}
	if h, ok := typicalArrivalHours[s.Name]; ok {
		return h * 60
	}
	return DefaultArrivalHour * 60
}

func parseMinuteOfDay(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, layout := range arrivalTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}
