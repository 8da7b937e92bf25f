package budget

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/types"
)

// The ledger owns one invariant: a budget's spent/remaining pair and each
// category's spent amount always equal the sums over the live expense list.
//
// Two strategies keep it. Pure inserts adjust the totals incrementally in
// O(1). Edits and deletes recompute everything from the current list in
// O(n), because the ledger keeps no pre-edit state to subtract. Every
// operation either fully succeeds or leaves the book untouched.

// CreateExpense validates the new expense, appends it and incrementally
// adjusts the budget and category totals.
func CreateExpense(book *types.LedgerBook, params types.CreateExpenseParams) (types.Expense, error) {
	if params.Amount < 0 {
		return types.Expense{}, fmt.Errorf("expense amount %.2f is negative: %w", params.Amount, types.ErrValidation)
	}
	if params.CategoryID == uuid.Nil {
		return types.Expense{}, fmt.Errorf("expense has no category: %w", types.ErrValidation)
	}

	exp := types.Expense{
		ID:            uuid.New(),
		BudgetID:      book.Budget.ID,
		CategoryID:    params.CategoryID,
		CityID:        params.CityID,
		AttractionID:  params.AttractionID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		Description:   params.Description,
		ExpenseDate:   types.DayOf(params.ExpenseDate),
		PaymentMethod: params.PaymentMethod,
	}
	book.Expenses = append(book.Expenses, exp)

	book.Budget.SpentAmount += exp.Amount
	// Remaining uses the same derivation as Recompute; a sequential
	// decrement can differ from total minus spent in the last float bit.
	book.Budget.RemainingAmount = book.Budget.TotalBudget - book.Budget.SpentAmount
	for i := range book.Categories {
		if book.Categories[i].ID == exp.CategoryID {
			book.Categories[i].SpentAmount += exp.Amount
			break
		}
	}
	// An expense naming a category the budget no longer lists is tolerated:
	// it counts toward the budget total and stays invisible in category
	// totals until the category reappears.
	return exp, nil
}

// UpdateExpense replaces the identified expense in place and recomputes all
// totals from scratch.
func UpdateExpense(book *types.LedgerBook, id uuid.UUID, patch types.UpdateExpenseParams) (types.Expense, error) {
	idx := findExpense(book.Expenses, id)
	if idx < 0 {
		return types.Expense{}, fmt.Errorf("expense %s: %w", id, types.ErrNotFound)
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return types.Expense{}, fmt.Errorf("expense amount %.2f is negative: %w", *patch.Amount, types.ErrValidation)
	}
	if patch.CategoryID != nil && *patch.CategoryID == uuid.Nil {
		return types.Expense{}, fmt.Errorf("expense has no category: %w", types.ErrValidation)
	}

	exp := book.Expenses[idx]
	if patch.CategoryID != nil {
		exp.CategoryID = *patch.CategoryID
	}
	if patch.CityID != nil {
		exp.CityID = patch.CityID
	}
	if patch.AttractionID != nil {
		exp.AttractionID = patch.AttractionID
	}
	if patch.Amount != nil {
		exp.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		exp.Currency = *patch.Currency
	}
	if patch.Description != nil {
		exp.Description = *patch.Description
	}
	if patch.ExpenseDate != nil {
		exp.ExpenseDate = types.DayOf(*patch.ExpenseDate)
	}
	if patch.PaymentMethod != nil {
		exp.PaymentMethod = *patch.PaymentMethod
	}
	book.Expenses[idx] = exp

	Recompute(book)
	return exp, nil
}

// DeleteExpense removes the identified expense and recomputes all totals.
func DeleteExpense(book *types.LedgerBook, id uuid.UUID) error {
	idx := findExpense(book.Expenses, id)
	if idx < 0 {
		return fmt.Errorf("expense %s: %w", id, types.ErrNotFound)
	}
	book.Expenses = append(book.Expenses[:idx], book.Expenses[idx+1:]...)

	Recompute(book)
	return nil
}

// Recompute rebuilds every derived total from the current expense list:
// spent as the plain sum, remaining as total minus spent, and each
// category's spent from a group-by over category ids.
func Recompute(book *types.LedgerBook) {
	spent := 0.0
	perCategory := make(map[uuid.UUID]float64, len(book.Categories))
	for _, e := range book.Expenses {
		spent += e.Amount
		perCategory[e.CategoryID] += e.Amount
	}
	book.Budget.SpentAmount = spent
	book.Budget.RemainingAmount = book.Budget.TotalBudget - spent
	for i := range book.Categories {
		book.Categories[i].SpentAmount = perCategory[book.Categories[i].ID]
	}
}

func findExpense(expenses []types.Expense, id uuid.UUID) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
