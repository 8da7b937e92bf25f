package types

import (
	"time"

	"github.com/google/uuid"
)

// Budget is the single money envelope for an itinerary.
// Invariant after every ledger mutation:
//
//	RemainingAmount == TotalBudget - SpentAmount
//	SpentAmount     == sum of all live expense amounts
type Budget struct {
	ID              uuid.UUID `json:"id"`
	ItineraryID     uuid.UUID `json:"itinerary_id"`
	TotalBudget     float64   `json:"total_budget"`
	SpentAmount     float64   `json:"spent_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	Currency        string    `json:"currency"`
}

// BudgetCategory is a named bucket (transport, lodging, food...) with its
// own allocation/spent pair. Its SpentAmount tracks the sum of expenses
// carrying its id.
type BudgetCategory struct {
	ID              uuid.UUID `json:"id"`
	BudgetID        uuid.UUID `json:"budget_id"`
	Name            string    `json:"name"`
	AllocatedAmount float64   `json:"allocated_amount"`
	SpentAmount     float64   `json:"spent_amount"`
}

// CreateBudgetParams carries the user-entered fields of a new budget.
type CreateBudgetParams struct {
	ItineraryID uuid.UUID `json:"itinerary_id"`
	TotalBudget float64   `json:"total_budget"`
	Currency    string    `json:"currency"`
}

// CreateCategoryParams carries the user-entered fields of a new category.
type CreateCategoryParams struct {
	Name            string  `json:"name"`
	AllocatedAmount float64 `json:"allocated_amount"`
}

// Expense is a single spend event.
type Expense struct {
	ID            uuid.UUID  `json:"id"`
	BudgetID      uuid.UUID  `json:"budget_id"`
	CategoryID    uuid.UUID  `json:"category_id"`
	CityID        *int       `json:"city_id,omitempty"`
	AttractionID  *uuid.UUID `json:"attraction_id,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Description   string     `json:"description"`
	ExpenseDate   time.Time  `json:"expense_date"`
	PaymentMethod string     `json:"payment_method"`
}

// CreateExpenseParams carries the user-entered fields of a new expense.
type CreateExpenseParams struct {
	CategoryID    uuid.UUID  `json:"category_id"`
	CityID        *int       `json:"city_id,omitempty"`
	AttractionID  *uuid.UUID `json:"attraction_id,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Description   string     `json:"description"`
	ExpenseDate   time.Time  `json:"expense_date"`
	PaymentMethod string     `json:"payment_method"`
}

// UpdateExpenseParams uses pointer fields for partial updates, matching the
// update-params convention used across the API.
type UpdateExpenseParams struct {
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	CityID        *int       `json:"city_id,omitempty"`
	AttractionID  *uuid.UUID `json:"attraction_id,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	Description   *string    `json:"description,omitempty"`
	ExpenseDate   *time.Time `json:"expense_date,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
}

// LedgerBook is the in-memory triple the budget ledger mutates. The caller
// loads it from persistence, hands it to the ledger, and stores whatever
// comes back. The ledger never touches storage itself.
type LedgerBook struct {
	Budget     Budget           `json:"budget"`
	Categories []BudgetCategory `json:"categories"`
	Expenses   []Expense        `json:"expenses"`
}
