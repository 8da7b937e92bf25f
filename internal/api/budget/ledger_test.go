package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mferrero/trip-ledger/internal/types"
)

func newTestBook(total float64) *types.LedgerBook {
	budgetID := uuid.New()
	return &types.LedgerBook{
		Budget: types.Budget{
			ID:              budgetID,
			ItineraryID:     uuid.New(),
			TotalBudget:     total,
			SpentAmount:     0,
			RemainingAmount: total,
			Currency:        "EUR",
		},
		Categories: []types.BudgetCategory{
			{ID: uuid.New(), BudgetID: budgetID, Name: "transport", AllocatedAmount: 500},
			{ID: uuid.New(), BudgetID: budgetID, Name: "lodging", AllocatedAmount: 800},
			{ID: uuid.New(), BudgetID: budgetID, Name: "food", AllocatedAmount: 400},
		},
	}
}

// assertReconciled checks the ledger invariant against the live expense list.
func assertReconciled(t *testing.T, book *types.LedgerBook) {
	t.Helper()
	spent := 0.0
	perCategory := make(map[uuid.UUID]float64)
	for _, e := range book.Expenses {
		spent += e.Amount
		perCategory[e.CategoryID] += e.Amount
	}
	assert.InDelta(t, spent, book.Budget.SpentAmount, 1e-9, "spent must equal sum of expenses")
	assert.InDelta(t, book.Budget.TotalBudget-book.Budget.SpentAmount, book.Budget.RemainingAmount, 1e-9)
	for _, c := range book.Categories {
		assert.InDelta(t, perCategory[c.ID], c.SpentAmount, 1e-9, "category %s", c.Name)
	}
}

func TestCreateExpense(t *testing.T) {
	t.Run("appends and adjusts totals incrementally", func(t *testing.T) {
		book := newTestBook(1000)
		transport := book.Categories[0].ID

		exp, err := CreateExpense(book, types.CreateExpenseParams{
			CategoryID:  transport,
			Amount:      120.50,
			Currency:    "EUR",
			Description: "TGV Paris-Milan",
			ExpenseDate: time.Date(2026, 2, 10, 18, 30, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, exp.ID)
		assert.Equal(t, book.Budget.ID, exp.BudgetID)
		assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), exp.ExpenseDate, "expense date is truncated to the day")
		require.Len(t, book.Expenses, 1)
		assert.Equal(t, 120.50, book.Budget.SpentAmount)
		assert.Equal(t, 879.50, book.Budget.RemainingAmount)
		assert.Equal(t, 120.50, book.Categories[0].SpentAmount)
		assert.Zero(t, book.Categories[1].SpentAmount)
		assertReconciled(t, book)
	})

	t.Run("negative amount leaves the book untouched", func(t *testing.T) {
		book := newTestBook(1000)
		_, err := CreateExpense(book, types.CreateExpenseParams{
			CategoryID: book.Categories[0].ID,
			Amount:     -5,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Empty(t, book.Expenses)
		assert.Zero(t, book.Budget.SpentAmount)
		assert.Equal(t, 1000.0, book.Budget.RemainingAmount)
	})

	t.Run("missing category leaves the book untouched", func(t *testing.T) {
		book := newTestBook(1000)
		_, err := CreateExpense(book, types.CreateExpenseParams{
			CategoryID: uuid.Nil,
			Amount:     10,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Empty(t, book.Expenses)
		assertReconciled(t, book)
	})

	t.Run("zero amount is allowed", func(t *testing.T) {
		book := newTestBook(1000)
		_, err := CreateExpense(book, types.CreateExpenseParams{
			CategoryID: book.Categories[2].ID,
			Amount:     0,
		})
		require.NoError(t, err)
		assert.Len(t, book.Expenses, 1)
		assertReconciled(t, book)
	})

	t.Run("unknown category counts toward the budget but no category bucket", func(t *testing.T) {
		book := newTestBook(1000)
		orphanCategory := uuid.New()

		_, err := CreateExpense(book, types.CreateExpenseParams{
			CategoryID: orphanCategory,
			Amount:     42,
		})
		require.NoError(t, err)

		assert.Equal(t, 42.0, book.Budget.SpentAmount)
		categorySum := 0.0
		for _, c := range book.Categories {
			categorySum += c.SpentAmount
		}
		assert.Less(t, categorySum, book.Budget.SpentAmount, "orphaned spend is invisible in category totals")
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("patches fields and recomputes totals", func(t *testing.T) {
		book := newTestBook(1000)
		transport := book.Categories[0].ID
		food := book.Categories[2].ID

		exp, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 100})
		require.NoError(t, err)
		_, err = CreateExpense(book, types.CreateExpenseParams{CategoryID: food, Amount: 30})
		require.NoError(t, err)

		newAmount := 250.0
		updated, err := UpdateExpense(book, exp.ID, types.UpdateExpenseParams{
			Amount:     &newAmount,
			CategoryID: &food,
		})
		require.NoError(t, err)

		assert.Equal(t, 250.0, updated.Amount)
		assert.Equal(t, food, updated.CategoryID)
		assert.Equal(t, 280.0, book.Budget.SpentAmount)
		assert.Equal(t, 720.0, book.Budget.RemainingAmount)
		assert.Zero(t, book.Categories[0].SpentAmount, "old category loses the spend")
		assert.Equal(t, 280.0, book.Categories[2].SpentAmount)
		assertReconciled(t, book)
	})

	t.Run("unknown id returns ErrNotFound without touching the book", func(t *testing.T) {
		book := newTestBook(1000)
		_, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: book.Categories[0].ID, Amount: 50})
		require.NoError(t, err)

		amount := 10.0
		_, err = UpdateExpense(book, uuid.New(), types.UpdateExpenseParams{Amount: &amount})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.Equal(t, 50.0, book.Budget.SpentAmount)
	})

	t.Run("invalid patch rejected before any mutation", func(t *testing.T) {
		book := newTestBook(1000)
		exp, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: book.Categories[0].ID, Amount: 50})
		require.NoError(t, err)

		bad := -1.0
		_, err = UpdateExpense(book, exp.ID, types.UpdateExpenseParams{Amount: &bad})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assert.Equal(t, 50.0, book.Expenses[0].Amount, "expense unchanged after rejected patch")
		assert.Equal(t, 50.0, book.Budget.SpentAmount)

		nilCat := uuid.Nil
		_, err = UpdateExpense(book, exp.ID, types.UpdateExpenseParams{CategoryID: &nilCat})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrValidation))
		assertReconciled(t, book)
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("removes and recomputes", func(t *testing.T) {
		book := newTestBook(1000)
		transport := book.Categories[0].ID

		exp, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 60})
		require.NoError(t, err)
		_, err = CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 40})
		require.NoError(t, err)

		require.NoError(t, DeleteExpense(book, exp.ID))
		assert.Len(t, book.Expenses, 1)
		assert.Equal(t, 40.0, book.Budget.SpentAmount)
		assertReconciled(t, book)
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		book := newTestBook(1000)
		err := DeleteExpense(book, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("insert then delete restores the exact prior totals", func(t *testing.T) {
		book := newTestBook(1000)
		transport := book.Categories[0].ID
		food := book.Categories[2].ID

		// Awkward float amounts on purpose: the round trip must be
		// bit-identical, not merely close.
		_, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 19.99})
		require.NoError(t, err)
		_, err = CreateExpense(book, types.CreateExpenseParams{CategoryID: food, Amount: 0.1})
		require.NoError(t, err)
		_, err = CreateExpense(book, types.CreateExpenseParams{CategoryID: food, Amount: 0.2})
		require.NoError(t, err)

		// Snapshot the incrementally built totals as-is. Normalizing them
		// first would hide any drift between the insert and delete paths.
		beforeSpent := book.Budget.SpentAmount
		beforeRemaining := book.Budget.RemainingAmount
		beforeCategories := make([]float64, len(book.Categories))
		for i, c := range book.Categories {
			beforeCategories[i] = c.SpentAmount
		}

		exp, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 123.45})
		require.NoError(t, err)
		require.NoError(t, DeleteExpense(book, exp.ID))

		assert.Equal(t, beforeSpent, book.Budget.SpentAmount)
		assert.Equal(t, beforeRemaining, book.Budget.RemainingAmount)
		for i, c := range book.Categories {
			assert.Equal(t, beforeCategories[i], c.SpentAmount, "category %s", c.Name)
		}
	})
}

func TestRecompute(t *testing.T) {
	t.Run("rebuilds every derived total from the list", func(t *testing.T) {
		book := newTestBook(500)
		transport := book.Categories[0].ID

		// Corrupt the totals, then recompute.
		_, err := CreateExpense(book, types.CreateExpenseParams{CategoryID: transport, Amount: 75})
		require.NoError(t, err)
		book.Budget.SpentAmount = 9999
		book.Budget.RemainingAmount = -1
		book.Categories[0].SpentAmount = 123

		Recompute(book)
		assert.Equal(t, 75.0, book.Budget.SpentAmount)
		assert.Equal(t, 425.0, book.Budget.RemainingAmount)
		assert.Equal(t, 75.0, book.Categories[0].SpentAmount)
		assertReconciled(t, book)
	})

	t.Run("zeroes categories with no surviving expenses", func(t *testing.T) {
		book := newTestBook(500)
		book.Categories[1].SpentAmount = 50

		Recompute(book)
		for _, c := range book.Categories {
			assert.Zero(t, c.SpentAmount)
		}
		assert.Zero(t, book.Budget.SpentAmount)
		assert.Equal(t, 500.0, book.Budget.RemainingAmount)
	})
}

func TestLedgerOperationSequences(t *testing.T) {
	book := newTestBook(2000)
	transport := book.Categories[0].ID
	lodging := book.Categories[1].ID
	food := book.Categories[2].ID

	var ids []uuid.UUID
	for _, p := range []types.CreateExpenseParams{
		{CategoryID: transport, Amount: 89.90},
		{CategoryID: lodging, Amount: 320.00},
		{CategoryID: food, Amount: 14.75},
		{CategoryID: food, Amount: 22.10},
		{CategoryID: transport, Amount: 3.20},
	} {
		exp, err := CreateExpense(book, p)
		require.NoError(t, err)
		ids = append(ids, exp.ID)
		assertReconciled(t, book)
	}

	amount := 305.00
	_, err := UpdateExpense(book, ids[1], types.UpdateExpenseParams{Amount: &amount})
	require.NoError(t, err)
	assertReconciled(t, book)

	require.NoError(t, DeleteExpense(book, ids[3]))
	assertReconciled(t, book)

	_, err = UpdateExpense(book, ids[0], types.UpdateExpenseParams{CategoryID: &food})
	require.NoError(t, err)
	assertReconciled(t, book)

	require.NoError(t, DeleteExpense(book, ids[4]))
	require.NoError(t, DeleteExpense(book, ids[2]))
	assertReconciled(t, book)
	assert.Len(t, book.Expenses, 2)
}
