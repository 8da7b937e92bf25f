package budget

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mferrero/trip-ledger/internal/api"
	"github.com/mferrero/trip-ledger/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

// NewHandlerImpl creates a new budget HandlerImpl instance.
func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// CreateBudget handles POST /budgets.
func (h *HandlerImpl) CreateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateBudget"))

	var params types.CreateBudgetParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.CreateBudget(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create budget", slog.Any("error", err))
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create budget")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, b)
}

// CreateCategory handles POST /budgets/{budgetID}/categories.
func (h *HandlerImpl) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateCategory"))

	budgetID, ok := h.budgetID(w, r)
	if !ok {
		return
	}

	var params types.CreateCategoryParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.CreateCategory(ctx, budgetID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create category", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Budget not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create category")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, c)
}

// GetBook handles GET /budgets/{budgetID} - the reconciled triple.
func (h *HandlerImpl) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetBook"))

	budgetID, ok := h.budgetID(w, r)
	if !ok {
		return
	}

	book, err := h.service.GetBook(ctx, budgetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load ledger book", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Budget not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load budget")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, book)
}

// CreateExpense handles POST /budgets/{budgetID}/expenses.
func (h *HandlerImpl) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateExpense"))

	budgetID, ok := h.budgetID(w, r)
	if !ok {
		return
	}

	var params types.CreateExpenseParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	exp, err := h.service.CreateExpense(ctx, budgetID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create expense", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Budget not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create expense")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, exp)
}

// UpdateExpense handles PUT /budgets/{budgetID}/expenses/{expenseID}.
func (h *HandlerImpl) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateExpense"))

	budgetID, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	expenseID, err := uuid.Parse(chi.URLParam(r, "expenseID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid expense ID")
		return
	}

	var patch types.UpdateExpenseParams
	if err := api.DecodeJSONBody(w, r, &patch); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	exp, err := h.service.UpdateExpense(ctx, budgetID, expenseID, patch)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update expense", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Expense not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update expense")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, exp)
}

// DeleteExpense handles DELETE /budgets/{budgetID}/expenses/{expenseID}.
func (h *HandlerImpl) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "DeleteExpense"))

	budgetID, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	expenseID, err := uuid.Parse(chi.URLParam(r, "expenseID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid expense ID")
		return
	}

	if err := h.service.DeleteExpense(ctx, budgetID, expenseID); err != nil {
		l.ErrorContext(ctx, "Failed to delete expense", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Expense not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete expense")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) budgetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "budgetID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid budget ID")
		return uuid.Nil, false
	}
	return id, true
}
