package budget

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mferrero/trip-ledger/internal/types"
)

func setupRepositoryTest(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresRepository(mockPool, logger), mockPool
}

func TestPostgresRepository_CreateBudget(t *testing.T) {
	ctx := context.Background()
	itineraryID := uuid.New()
	newID := uuid.New()

	repo, mockPool := setupRepositoryTest(t)
	mockPool.ExpectQuery("INSERT INTO budgets").
		WithArgs(itineraryID, 2500.0, 0.0, 2500.0, "EUR").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(newID))

	id, err := repo.CreateBudget(ctx, types.Budget{
		ItineraryID: itineraryID, TotalBudget: 2500, RemainingAmount: 2500, Currency: "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, newID, id)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_CreateCategory(t *testing.T) {
	ctx := context.Background()
	budgetID := uuid.New()
	newID := uuid.New()

	repo, mockPool := setupRepositoryTest(t)
	mockPool.ExpectQuery("INSERT INTO budget_categories").
		WithArgs(budgetID, "lodging", 800.0, 0.0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(newID))

	id, err := repo.CreateCategory(ctx, types.BudgetCategory{
		BudgetID: budgetID, Name: "lodging", AllocatedAmount: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, newID, id)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_GetBudget(t *testing.T) {
	ctx := context.Background()
	budgetID := uuid.New()
	itineraryID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, itinerary_id, total_budget, spent_amount, remaining_amount, currency").
			WithArgs(budgetID).
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "itinerary_id", "total_budget", "spent_amount", "remaining_amount", "currency"},
			).AddRow(budgetID, itineraryID, 1000.0, 120.5, 879.5, "EUR"))

		b, err := repo.GetBudget(ctx, budgetID)
		require.NoError(t, err)
		assert.Equal(t, budgetID, b.ID)
		assert.Equal(t, 1000.0, b.TotalBudget)
		assert.Equal(t, 879.5, b.RemainingAmount)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		mockPool.ExpectQuery("SELECT id, itinerary_id, total_budget").
			WithArgs(budgetID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetBudget(ctx, budgetID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepository_LoadBook(t *testing.T) {
	ctx := context.Background()
	budgetID := uuid.New()
	itineraryID := uuid.New()
	categoryID := uuid.New()
	expenseID := uuid.New()

	repo, mockPool := setupRepositoryTest(t)

	mockPool.ExpectQuery("SELECT id, itinerary_id, total_budget, spent_amount, remaining_amount, currency").
		WithArgs(budgetID).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "itinerary_id", "total_budget", "spent_amount", "remaining_amount", "currency"},
		).AddRow(budgetID, itineraryID, 1000.0, 50.0, 950.0, "EUR"))

	mockPool.ExpectQuery("SELECT id, budget_id, name, allocated_amount, spent_amount").
		WithArgs(budgetID).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "budget_id", "name", "allocated_amount", "spent_amount"},
		).AddRow(categoryID, budgetID, "food", 400.0, 50.0))

	mockPool.ExpectQuery("SELECT id, budget_id, category_id, city_id, attraction_id").
		WithArgs(budgetID).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "budget_id", "category_id", "city_id", "attraction_id", "amount", "currency", "description", "expense_date", "payment_method"},
		).AddRow(expenseID, budgetID, categoryID, nil, nil, 50.0, "EUR", "dinner", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "card"))

	book, err := repo.LoadBook(ctx, budgetID)
	require.NoError(t, err)
	assert.Equal(t, budgetID, book.Budget.ID)
	require.Len(t, book.Categories, 1)
	require.Len(t, book.Expenses, 1)
	assert.Equal(t, expenseID, book.Expenses[0].ID)
	assert.Nil(t, book.Expenses[0].CityID)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_SaveBook(t *testing.T) {
	ctx := context.Background()
	budgetID := uuid.New()
	categoryID := uuid.New()
	expenseID := uuid.New()

	book := &types.LedgerBook{
		Budget: types.Budget{
			ID: budgetID, ItineraryID: uuid.New(),
			TotalBudget: 1000, SpentAmount: 50, RemainingAmount: 950, Currency: "EUR",
		},
		Categories: []types.BudgetCategory{
			{ID: categoryID, BudgetID: budgetID, Name: "food", AllocatedAmount: 400, SpentAmount: 50},
		},
		Expenses: []types.Expense{
			{
				ID: expenseID, BudgetID: budgetID, CategoryID: categoryID,
				Amount: 50, Currency: "EUR", Description: "dinner",
				ExpenseDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), PaymentMethod: "card",
			},
		},
	}

	t.Run("commits the whole triple", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE budgets").
			WithArgs(budgetID, 1000.0, 50.0, 950.0, "EUR").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("UPDATE budget_categories").
			WithArgs(categoryID, "food", 400.0, 50.0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("DELETE FROM expenses").
			WithArgs(budgetID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mockPool.ExpectExec("INSERT INTO expenses").
			WithArgs(expenseID, budgetID, categoryID, book.Expenses[0].CityID, book.Expenses[0].AttractionID,
				50.0, "EUR", "dinner", book.Expenses[0].ExpenseDate, "card").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()
		mockPool.ExpectRollback() // deferred rollback after commit is a no-op

		require.NoError(t, repo.SaveBook(ctx, book))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("missing budget row maps to ErrNotFound and rolls back", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE budgets").
			WithArgs(budgetID, 1000.0, 50.0, 950.0, "EUR").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectRollback()

		err := repo.SaveBook(ctx, book)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("expense insert failure aborts the transaction", func(t *testing.T) {
		repo, mockPool := setupRepositoryTest(t)
		dbErr := errors.New("constraint violation")

		mockPool.ExpectBegin()
		mockPool.ExpectExec("UPDATE budgets").
			WithArgs(budgetID, 1000.0, 50.0, 950.0, "EUR").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("UPDATE budget_categories").
			WithArgs(categoryID, "food", 400.0, 50.0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectExec("DELETE FROM expenses").
			WithArgs(budgetID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mockPool.ExpectExec("INSERT INTO expenses").
			WithArgs(expenseID, budgetID, categoryID, book.Expenses[0].CityID, book.Expenses[0].AttractionID,
				50.0, "EUR", "dinner", book.Expenses[0].ExpenseDate, "card").
			WillReturnError(dbErr)
		mockPool.ExpectRollback()

		err := repo.SaveBook(ctx, book)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dbErr))
		require.NoError(t, mockPool.ExpectationsWereMet())
	})
}
