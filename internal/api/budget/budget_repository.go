package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mferrero/trip-ledger/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)
var _ PGXPool = (*pgxpool.Pool)(nil)

// PGXPool is the slice of pgxpool.Pool the repository uses. pgxmock
// implements it too, so repository tests run without a database.
type PGXPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository persists the budget triple. LoadBook/SaveBook move the whole
// (budget, categories, expenses) set at once so the ledger's no-partial-apply
// guarantee extends to storage.
type Repository interface {
	CreateBudget(ctx context.Context, b types.Budget) (uuid.UUID, error)
	GetBudget(ctx context.Context, budgetID uuid.UUID) (*types.Budget, error)
	CreateCategory(ctx context.Context, c types.BudgetCategory) (uuid.UUID, error)
	ListCategories(ctx context.Context, budgetID uuid.UUID) ([]types.BudgetCategory, error)
	ListExpenses(ctx context.Context, budgetID uuid.UUID) ([]types.Expense, error)
	LoadBook(ctx context.Context, budgetID uuid.UUID) (*types.LedgerBook, error)
	SaveBook(ctx context.Context, book *types.LedgerBook) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresRepository(pool PGXPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pool,
	}
}

func (r *PostgresRepository) CreateBudget(ctx context.Context, b types.Budget) (uuid.UUID, error) {
	query := `
        INSERT INTO budgets (itinerary_id, total_budget, spent_amount, remaining_amount, currency)
        VALUES ($1, $2, $3, $4, $5) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		b.ItineraryID, b.TotalBudget, b.SpentAmount, b.RemainingAmount, b.Currency,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert budget: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetBudget(ctx context.Context, budgetID uuid.UUID) (*types.Budget, error) {
	query := `
        SELECT id, itinerary_id, total_budget, spent_amount, remaining_amount, currency
        FROM budgets
        WHERE id = $1
    `
	var b types.Budget
	if err := r.pgpool.QueryRow(ctx, query, budgetID).Scan(
		&b.ID, &b.ItineraryID, &b.TotalBudget, &b.SpentAmount, &b.RemainingAmount, &b.Currency,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("budget %s: %w", budgetID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch budget: %w", err)
	}
	return &b, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c types.BudgetCategory) (uuid.UUID, error) {
	query := `
        INSERT INTO budget_categories (budget_id, name, allocated_amount, spent_amount)
        VALUES ($1, $2, $3, $4) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		c.BudgetID, c.Name, c.AllocatedAmount, c.SpentAmount,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, budgetID uuid.UUID) ([]types.BudgetCategory, error) {
	query := `
        SELECT id, budget_id, name, allocated_amount, spent_amount
        FROM budget_categories
        WHERE budget_id = $1
        ORDER BY name
    `
	rows, err := r.pgpool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []types.BudgetCategory
	for rows.Next() {
		var c types.BudgetCategory
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &c.AllocatedAmount, &c.SpentAmount); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListExpenses(ctx context.Context, budgetID uuid.UUID) ([]types.Expense, error) {
	query := `
        SELECT id, budget_id, category_id, city_id, attraction_id,
               amount, currency, description, expense_date, payment_method
        FROM expenses
        WHERE budget_id = $1
        ORDER BY expense_date, id
    `
	rows, err := r.pgpool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []types.Expense
	for rows.Next() {
		var e types.Expense
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.CategoryID, &e.CityID, &e.AttractionID,
			&e.Amount, &e.Currency, &e.Description, &e.ExpenseDate, &e.PaymentMethod); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) LoadBook(ctx context.Context, budgetID uuid.UUID) (*types.LedgerBook, error) {
	b, err := r.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	categories, err := r.ListCategories(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	expenses, err := r.ListExpenses(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return &types.LedgerBook{Budget: *b, Categories: categories, Expenses: expenses}, nil
}

// SaveBook writes the whole triple in one transaction. The expense rows are
// replaced wholesale; with a few hundred records at most that is cheaper
// than diffing and keeps the commit all-or-nothing.
func (r *PostgresRepository) SaveBook(ctx context.Context, book *types.LedgerBook) error {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE budgets
        SET total_budget = $2, spent_amount = $3, remaining_amount = $4, currency = $5
        WHERE id = $1
    `, book.Budget.ID, book.Budget.TotalBudget, book.Budget.SpentAmount,
		book.Budget.RemainingAmount, book.Budget.Currency)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("budget %s: %w", book.Budget.ID, types.ErrNotFound)
	}

	for _, c := range book.Categories {
		if _, err := tx.Exec(ctx, `
            UPDATE budget_categories SET name = $2, allocated_amount = $3, spent_amount = $4
            WHERE id = $1
        `, c.ID, c.Name, c.AllocatedAmount, c.SpentAmount); err != nil {
			return fmt.Errorf("failed to update category %s: %w", c.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE budget_id = $1`, book.Budget.ID); err != nil {
		return fmt.Errorf("failed to clear expenses: %w", err)
	}
	for _, e := range book.Expenses {
		if _, err := tx.Exec(ctx, `
            INSERT INTO expenses (
                id, budget_id, category_id, city_id, attraction_id,
                amount, currency, description, expense_date, payment_method
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, e.ID, e.BudgetID, e.CategoryID, e.CityID, e.AttractionID,
			e.Amount, e.Currency, e.Description, e.ExpenseDate, e.PaymentMethod); err != nil {
			return fmt.Errorf("failed to insert expense %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
