package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/app/observability/metrics"
	"github.com/mferrero/trip-ledger/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// CreateBudget opens a fresh budget for an itinerary. The new budget
	// starts with no expenses, so remaining equals the total.
	CreateBudget(ctx context.Context, params types.CreateBudgetParams) (*types.Budget, error)

	// CreateCategory adds a named bucket to an existing budget.
	// Returns types.ErrNotFound when the budget id is unknown.
	CreateCategory(ctx context.Context, budgetID uuid.UUID, params types.CreateCategoryParams) (*types.BudgetCategory, error)

	// GetBook returns the reconciled (budget, categories, expenses) triple.
	GetBook(ctx context.Context, budgetID uuid.UUID) (*types.LedgerBook, error)

	// CreateExpense validates and records a new expense, adjusting the
	// budget and category totals incrementally.
	CreateExpense(ctx context.Context, budgetID uuid.UUID, params types.CreateExpenseParams) (*types.Expense, error)

	// UpdateExpense patches an existing expense and recomputes every
	// derived total from the surviving expense list.
	// Returns types.ErrNotFound when the id is unknown.
	UpdateExpense(ctx context.Context, budgetID, expenseID uuid.UUID, patch types.UpdateExpenseParams) (*types.Expense, error)

	// DeleteExpense removes an expense and recomputes every derived total.
	// Returns types.ErrNotFound when the id is unknown.
	DeleteExpense(ctx context.Context, budgetID, expenseID uuid.UUID) error
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	metrics *metrics.AppMetrics // nil in tests
}

// NewBudgetService creates a new budget ledger service instance.
func NewBudgetService(repo Repository, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		metrics: m,
	}
}

func (s *ServiceImpl) countMutation(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.LedgerMutationsTotal.Add(ctx, 1)
	}
}

func (s *ServiceImpl) CreateBudget(ctx context.Context, params types.CreateBudgetParams) (*types.Budget, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "CreateBudget", trace.WithAttributes(
		attribute.String("itinerary.id", params.ItineraryID.String()),
		attribute.Float64("budget.total", params.TotalBudget),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateBudget"), slog.String("itineraryID", params.ItineraryID.String()))

	if params.ItineraryID == uuid.Nil {
		err := fmt.Errorf("%w: itinerary id is required", types.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Budget rejected")
		return nil, err
	}
	if params.TotalBudget < 0 {
		err := fmt.Errorf("%w: total budget cannot be negative", types.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Budget rejected")
		return nil, err
	}

	b := types.Budget{
		ItineraryID:     params.ItineraryID,
		TotalBudget:     params.TotalBudget,
		RemainingAmount: params.TotalBudget,
		Currency:        params.Currency,
	}
	id, err := s.repo.CreateBudget(ctx, b)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create budget", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create budget")
		return nil, fmt.Errorf("error creating budget: %w", err)
	}
	b.ID = id

	l.InfoContext(ctx, "Budget created", slog.String("budgetID", id.String()))
	span.SetStatus(codes.Ok, "Budget created")
	return &b, nil
}

func (s *ServiceImpl) CreateCategory(ctx context.Context, budgetID uuid.UUID, params types.CreateCategoryParams) (*types.BudgetCategory, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "CreateCategory", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
		attribute.String("category.name", params.Name),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateCategory"), slog.String("budgetID", budgetID.String()))

	if params.Name == "" {
		err := fmt.Errorf("%w: category name is required", types.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Category rejected")
		return nil, err
	}
	if params.AllocatedAmount < 0 {
		err := fmt.Errorf("%w: allocated amount cannot be negative", types.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Category rejected")
		return nil, err
	}

	// The budget must exist before a bucket can hang off it.
	if _, err := s.repo.GetBudget(ctx, budgetID); err != nil {
		l.WarnContext(ctx, "Failed to fetch budget for category", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch budget")
		return nil, fmt.Errorf("error fetching budget: %w", err)
	}

	c := types.BudgetCategory{
		BudgetID:        budgetID,
		Name:            params.Name,
		AllocatedAmount: params.AllocatedAmount,
	}
	id, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create category", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create category")
		return nil, fmt.Errorf("error creating category: %w", err)
	}
	c.ID = id

	l.InfoContext(ctx, "Category created", slog.String("categoryID", id.String()), slog.String("name", c.Name))
	span.SetStatus(codes.Ok, "Category created")
	return &c, nil
}

func (s *ServiceImpl) GetBook(ctx context.Context, budgetID uuid.UUID) (*types.LedgerBook, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "GetBook", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetBook"), slog.String("budgetID", budgetID.String()))

	book, err := s.repo.LoadBook(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load ledger book")
		return nil, fmt.Errorf("error loading ledger book: %w", err)
	}

	span.SetStatus(codes.Ok, "Ledger book loaded")
	return book, nil
}

func (s *ServiceImpl) CreateExpense(ctx context.Context, budgetID uuid.UUID, params types.CreateExpenseParams) (*types.Expense, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "CreateExpense", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
		attribute.Float64("expense.amount", params.Amount),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateExpense"), slog.String("budgetID", budgetID.String()))

	book, err := s.repo.LoadBook(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load ledger book")
		return nil, fmt.Errorf("error loading ledger book: %w", err)
	}

	exp, err := CreateExpense(book, params)
	if err != nil {
		l.WarnContext(ctx, "Expense rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Expense rejected")
		return nil, err
	}

	if err := s.repo.SaveBook(ctx, book); err != nil {
		l.ErrorContext(ctx, "Failed to save ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save ledger book")
		return nil, fmt.Errorf("error saving ledger book: %w", err)
	}

	s.countMutation(ctx)
	l.InfoContext(ctx, "Expense created",
		slog.String("expenseID", exp.ID.String()),
		slog.Float64("amount", exp.Amount),
		slog.Float64("spent", book.Budget.SpentAmount),
	)
	span.SetStatus(codes.Ok, "Expense created")
	return &exp, nil
}

func (s *ServiceImpl) UpdateExpense(ctx context.Context, budgetID, expenseID uuid.UUID, patch types.UpdateExpenseParams) (*types.Expense, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "UpdateExpense", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
		attribute.String("expense.id", expenseID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateExpense"), slog.String("expenseID", expenseID.String()))

	book, err := s.repo.LoadBook(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load ledger book")
		return nil, fmt.Errorf("error loading ledger book: %w", err)
	}

	exp, err := UpdateExpense(book, expenseID, patch)
	if err != nil {
		l.WarnContext(ctx, "Expense update rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Expense update rejected")
		return nil, err
	}

	if err := s.repo.SaveBook(ctx, book); err != nil {
		l.ErrorContext(ctx, "Failed to save ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save ledger book")
		return nil, fmt.Errorf("error saving ledger book: %w", err)
	}

	s.countMutation(ctx)
	l.InfoContext(ctx, "Expense updated", slog.Float64("spent", book.Budget.SpentAmount))
	span.SetStatus(codes.Ok, "Expense updated")
	return &exp, nil
}

func (s *ServiceImpl) DeleteExpense(ctx context.Context, budgetID, expenseID uuid.UUID) error {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "DeleteExpense", trace.WithAttributes(
		attribute.String("budget.id", budgetID.String()),
		attribute.String("expense.id", expenseID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteExpense"), slog.String("expenseID", expenseID.String()))

	book, err := s.repo.LoadBook(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load ledger book")
		return fmt.Errorf("error loading ledger book: %w", err)
	}

	if err := DeleteExpense(book, expenseID); err != nil {
		l.WarnContext(ctx, "Expense delete rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Expense delete rejected")
		return err
	}

	if err := s.repo.SaveBook(ctx, book); err != nil {
		l.ErrorContext(ctx, "Failed to save ledger book", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save ledger book")
		return fmt.Errorf("error saving ledger book: %w", err)
	}

	s.countMutation(ctx)
	l.InfoContext(ctx, "Expense deleted", slog.Float64("spent", book.Budget.SpentAmount))
	span.SetStatus(codes.Ok, "Expense deleted")
	return nil
}
