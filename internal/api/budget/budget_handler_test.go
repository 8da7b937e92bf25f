package budget

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mferrero/trip-ledger/internal/types"
)

// MockBudgetService is a mock implementation of Service
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) CreateBudget(ctx context.Context, params types.CreateBudgetParams) (*types.Budget, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Budget), args.Error(1)
}

func (m *MockBudgetService) CreateCategory(ctx context.Context, budgetID uuid.UUID, params types.CreateCategoryParams) (*types.BudgetCategory, error) {
	args := m.Called(ctx, budgetID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BudgetCategory), args.Error(1)
}

func (m *MockBudgetService) GetBook(ctx context.Context, budgetID uuid.UUID) (*types.LedgerBook, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LedgerBook), args.Error(1)
}

func (m *MockBudgetService) CreateExpense(ctx context.Context, budgetID uuid.UUID, params types.CreateExpenseParams) (*types.Expense, error) {
	args := m.Called(ctx, budgetID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockBudgetService) UpdateExpense(ctx context.Context, budgetID, expenseID uuid.UUID, patch types.UpdateExpenseParams) (*types.Expense, error) {
	args := m.Called(ctx, budgetID, expenseID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockBudgetService) DeleteExpense(ctx context.Context, budgetID, expenseID uuid.UUID) error {
	args := m.Called(ctx, budgetID, expenseID)
	return args.Error(0)
}

func setupBudgetHandlerTest() (*chi.Mux, *MockBudgetService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockBudgetService)
	handler := NewHandlerImpl(mockService, logger)

	r := chi.NewRouter()
	r.Post("/budgets", handler.CreateBudget)
	r.Post("/budgets/{budgetID}/categories", handler.CreateCategory)
	r.Get("/budgets/{budgetID}", handler.GetBook)
	r.Post("/budgets/{budgetID}/expenses", handler.CreateExpense)
	r.Put("/budgets/{budgetID}/expenses/{expenseID}", handler.UpdateExpense)
	r.Delete("/budgets/{budgetID}/expenses/{expenseID}", handler.DeleteExpense)
	return r, mockService
}

func TestHandlerImpl_GetBook(t *testing.T) {
	budgetID := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		book := newTestBook(1000)
		book.Budget.ID = budgetID
		mockService.On("GetBook", mock.Anything, budgetID).Return(book, nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/budgets/"+budgetID.String(), nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got types.LedgerBook
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, budgetID, got.Budget.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("GetBook", mock.Anything, budgetID).Return(nil, types.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/budgets/"+budgetID.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router, _ := setupBudgetHandlerTest()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/budgets/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerImpl_CreateBudget(t *testing.T) {
	itineraryID := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		created := &types.Budget{ID: uuid.New(), ItineraryID: itineraryID, TotalBudget: 2500, RemainingAmount: 2500, Currency: "EUR"}
		mockService.On("CreateBudget", mock.Anything, mock.MatchedBy(func(p types.CreateBudgetParams) bool {
			return p.ItineraryID == itineraryID && p.TotalBudget == 2500
		})).Return(created, nil).Once()

		body := `{"itinerary_id":"` + itineraryID.String() + `","total_budget":2500,"currency":"EUR"}`
		req := httptest.NewRequest(http.MethodPost, "/budgets", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got types.Budget
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 2500.0, got.RemainingAmount)
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure maps to 400", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("CreateBudget", mock.Anything, mock.Anything).Return(nil, types.ErrValidation).Once()

		body := `{"itinerary_id":"` + itineraryID.String() + `","total_budget":-1}`
		req := httptest.NewRequest(http.MethodPost, "/budgets", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerImpl_CreateCategory(t *testing.T) {
	budgetID := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		created := &types.BudgetCategory{ID: uuid.New(), BudgetID: budgetID, Name: "lodging", AllocatedAmount: 800}
		mockService.On("CreateCategory", mock.Anything, budgetID, mock.MatchedBy(func(p types.CreateCategoryParams) bool {
			return p.Name == "lodging" && p.AllocatedAmount == 800
		})).Return(created, nil).Once()

		body := `{"name":"lodging","allocated_amount":800}`
		req := httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/categories", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got types.BudgetCategory
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.ID, got.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("unknown budget maps to 404", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("CreateCategory", mock.Anything, budgetID, mock.Anything).Return(nil, types.ErrNotFound).Once()

		body := `{"name":"food","allocated_amount":100}`
		req := httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/categories", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerImpl_CreateExpense(t *testing.T) {
	budgetID := uuid.New()
	categoryID := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		exp := &types.Expense{ID: uuid.New(), BudgetID: budgetID, CategoryID: categoryID, Amount: 25}
		mockService.On("CreateExpense", mock.Anything, budgetID, mock.MatchedBy(func(p types.CreateExpenseParams) bool {
			return p.CategoryID == categoryID && p.Amount == 25
		})).Return(exp, nil).Once()

		body := `{"category_id":"` + categoryID.String() + `","amount":25,"currency":"EUR"}`
		req := httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/expenses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("CreateExpense", mock.Anything, budgetID, mock.Anything).
			Return(nil, types.ErrValidation).Once()

		body := `{"category_id":"` + categoryID.String() + `","amount":-1}`
		req := httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/expenses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := setupBudgetHandlerTest()
		req := httptest.NewRequest(http.MethodPost, "/budgets/"+budgetID.String()+"/expenses", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerImpl_DeleteExpense(t *testing.T) {
	budgetID := uuid.New()
	expenseID := uuid.New()

	t.Run("success", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("DeleteExpense", mock.Anything, budgetID, expenseID).Return(nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete,
			"/budgets/"+budgetID.String()+"/expenses/"+expenseID.String(), nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("unknown expense maps to 404", func(t *testing.T) {
		router, mockService := setupBudgetHandlerTest()
		mockService.On("DeleteExpense", mock.Anything, budgetID, expenseID).Return(types.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete,
			"/budgets/"+budgetID.String()+"/expenses/"+expenseID.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
