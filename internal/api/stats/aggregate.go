package stats

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/types"
)

// AggregateByCountry turns a day sequence into days-per-country totals for
// the visa itinerary.
//
// Transit-only days and transit stays (per the policy) are skipped entirely
// so the departure hub's country is never credited twice on a round trip.
// On a travel day with cities from two countries, both countries receive a
// full day-country credit. That is deliberate conservative counting for
// visa day limits. The percentage denominator is the count of eligible
// days, not of credits, so shares can sum past 100 on trips with
// cross-border travel days. Do not "fix" that by normalizing.
func AggregateByCountry(days []types.DayRecord, policy types.TransitPolicy) []types.CountryStat {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	total := 0

	for _, day := range days {
		if day.IsTransitOnly {
			continue
		}
		var credited []string
		for _, stay := range day.ActiveCities {
			if policy.IsTransit(stay.ID) {
				continue
			}
			if containsString(credited, stay.Country) {
				continue
			}
			credited = append(credited, stay.Country)
		}
		if len(credited) > 0 {
			total++
		}
		for _, country := range credited {
			if _, seen := firstSeen[country]; !seen {
				firstSeen[country] = len(firstSeen)
			}
			counts[country]++
		}
	}

	out := make([]types.CountryStat, 0, len(counts))
	for country, n := range counts {
		stat := types.CountryStat{Country: country, Days: n}
		if total > 0 {
			stat.Percentage = float64(n) / float64(total)
		}
		out = append(out, stat)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days > out[j].Days
		}
		return firstSeen[out[i].Country] < firstSeen[out[j].Country]
	})
	return out
}

// PrimaryDestination names the country holding the most trip days, the one
// whose consulate the visa application goes to. Ties go to the country
// encountered first in chronological order, which AggregateByCountry's sort
// already guarantees.
func PrimaryDestination(stats []types.CountryStat) string {
	if len(stats) == 0 {
		return ""
	}
	return stats[0].Country
}

// AggregateByCategory sums expense amounts per category id. No exclusions:
// expenses pointing at a category the budget no longer lists still show up
// under their id here.
func AggregateByCategory(expenses []types.Expense) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(expenses))
	for _, e := range expenses {
		out[e.CategoryID] += e.Amount
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
