package container

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/mferrero/trip-ledger/app/db"
	"github.com/mferrero/trip-ledger/app/observability/metrics"
	"github.com/mferrero/trip-ledger/config"
	"github.com/mferrero/trip-ledger/internal/api/auth"
	"github.com/mferrero/trip-ledger/internal/api/budget"
	"github.com/mferrero/trip-ledger/internal/api/itinerary"
	"github.com/mferrero/trip-ledger/internal/api/schedule"
	"github.com/mferrero/trip-ledger/internal/api/stats"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	AuthHandler      *auth.AuthHandler
	ItineraryHandler *itinerary.HandlerImpl
	ScheduleHandler  *schedule.HandlerImpl
	StatsHandler     *stats.HandlerImpl
	BudgetHandler    *budget.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	metrics.InitAppMetrics()
	appMetrics := metrics.Get()

	// Repositories
	itineraryRepo := itinerary.NewPostgresRepository(pool, logger)
	budgetRepo := budget.NewPostgresRepository(pool, logger)

	// Services
	authService := auth.NewAuthService(cfg.Auth, logger)
	scheduleService := schedule.NewScheduleService(itineraryRepo, appMetrics, logger)
	itineraryService := itinerary.NewItineraryService(itineraryRepo, scheduleService, logger)
	statsService := stats.NewStatsService(scheduleService, itineraryRepo, budgetRepo, logger)
	budgetService := budget.NewBudgetService(budgetRepo, appMetrics, logger)

	// Handlers
	authHandler := auth.NewAuthHandler(authService, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)
	scheduleHandler := schedule.NewHandlerImpl(scheduleService, logger)
	statsHandler := stats.NewHandlerImpl(statsService, logger)
	budgetHandler := budget.NewHandlerImpl(budgetService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		AuthHandler:      authHandler,
		ItineraryHandler: itineraryHandler,
		ScheduleHandler:  scheduleHandler,
		StatsHandler:     statsHandler,
		BudgetHandler:    budgetHandler,
	}, nil
}
