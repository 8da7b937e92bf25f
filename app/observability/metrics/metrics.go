package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	ScheduleBuildsTotal          metric.Int64Counter
	ScheduleBuildDurationSeconds metric.Float64Histogram
	LedgerMutationsTotal         metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("trip-ledger")
		var err error
		m := &AppMetrics{}

		m.ScheduleBuildsTotal, err = meter.Int64Counter(
			"schedule_builds_total",
			metric.WithDescription("Total number of day-by-day schedule expansions"),
			metric.WithUnit("{build}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create schedule_builds_total: %v", err)
		}

		m.ScheduleBuildDurationSeconds, err = meter.Float64Histogram(
			"schedule_build_duration_seconds",
			metric.WithDescription("Duration of schedule expansions in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create schedule_build_duration_seconds: %v", err)
		}

		m.LedgerMutationsTotal, err = meter.Int64Counter(
			"ledger_mutations_total",
			metric.WithDescription("Total number of expense create/update/delete operations"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ledger_mutations_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
