package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mferrero/trip-ledger/internal/api/auth"
	"github.com/mferrero/trip-ledger/internal/api/budget"
	"github.com/mferrero/trip-ledger/internal/api/itinerary"
	"github.com/mferrero/trip-ledger/internal/api/schedule"
	"github.com/mferrero/trip-ledger/internal/api/stats"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandler
	ItineraryHandler       *itinerary.HandlerImpl
	ScheduleHandler        *schedule.HandlerImpl
	StatsHandler           *stats.HandlerImpl
	BudgetHandler          *budget.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public: login and the read-only trip views (the printable visa
		// itinerary is shared with consulates without a token).
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)

			r.Get("/itineraries", cfg.ItineraryHandler.ListItineraries)
			r.Get("/itineraries/{itineraryID}", cfg.ItineraryHandler.GetItinerary)
			r.Get("/itineraries/{itineraryID}/stays", cfg.ItineraryHandler.ListStays)
			r.Get("/itineraries/{itineraryID}/legs", cfg.ItineraryHandler.ListLegs)
			r.Get("/itineraries/{itineraryID}/schedule", cfg.ScheduleHandler.GetSchedule)
			r.Get("/itineraries/{itineraryID}/stats/countries", cfg.StatsHandler.GetCountryStats)
			r.Get("/budgets/{budgetID}", cfg.BudgetHandler.GetBook)
			r.Get("/budgets/{budgetID}/stats/categories", cfg.StatsHandler.GetCategoryTotals)
		})

		// Protected: everything that mutates trip or ledger data.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/itineraries", cfg.ItineraryHandler.CreateItinerary)
			r.Delete("/itineraries/{itineraryID}", cfg.ItineraryHandler.DeleteItinerary)

			r.Post("/itineraries/{itineraryID}/stays", cfg.ItineraryHandler.CreateStay)
			r.Put("/itineraries/{itineraryID}/stays/{stayID}", cfg.ItineraryHandler.UpdateStay)
			r.Delete("/itineraries/{itineraryID}/stays/{stayID}", cfg.ItineraryHandler.DeleteStay)

			r.Post("/itineraries/{itineraryID}/legs", cfg.ItineraryHandler.CreateLeg)
			r.Delete("/itineraries/{itineraryID}/legs/{legID}", cfg.ItineraryHandler.DeleteLeg)

			r.Post("/budgets", cfg.BudgetHandler.CreateBudget)
			r.Post("/budgets/{budgetID}/categories", cfg.BudgetHandler.CreateCategory)
			r.Post("/budgets/{budgetID}/expenses", cfg.BudgetHandler.CreateExpense)
			r.Put("/budgets/{budgetID}/expenses/{expenseID}", cfg.BudgetHandler.UpdateExpense)
			r.Delete("/budgets/{budgetID}/expenses/{expenseID}", cfg.BudgetHandler.DeleteExpense)
		})
	})

	return r
}
