package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/dto"
	"github.com/samirahpartel/kirtbank/pkg/auth"
	"github.com/samirahpartel/kirtbank/pkg/utils"
)

func NewMock(t *testing.T) (*TransactionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service, []string{"bank-transfer", "gift-cards", "crypto"})
	defer ctrl.Finish()
	return handler, service
}

func authedRequest(method, target, body string, userID int) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	}
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withAdmin(r *http.Request, isAdmin bool) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.IsAdminKey, isAdmin))
}

func TestSubmitDepositHandler(t *testing.T) {
	handler, service := NewMock(t)

	pending := &domain.Transaction{
		ID:      uuid.New(),
		UserID:  1,
		Type:    domain.TxTypeDeposit,
		Amount:  250_00,
		Method:  "bank-transfer",
		Account: domain.BucketChecking,
		Status:  domain.StatusPending,
		Date:    time.Now(),
	}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Accepted and left pending",
			body: `{"amount":250,"method":"bank-transfer"}`,
			prepareMock: func() {
				service.EXPECT().
					Submit(gomock.Any(), 1, int64(250_00), "bank-transfer", domain.BucketChecking, "").
					Return(pending, nil)
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name: "Explicit savings bucket",
			body: `{"amount":250,"method":"bank-transfer","account":"savings"}`,
			prepareMock: func() {
				service.EXPECT().
					Submit(gomock.Any(), 1, int64(250_00), "bank-transfer", domain.BucketSavings, "").
					Return(pending, nil)
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name:          "Unknown method",
			body:          `{"amount":250,"method":"carrier-pigeon"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Unknown deposit method",
		},
		{
			name:          "Unknown bucket",
			body:          `{"amount":250,"method":"bank-transfer","account":"offshore"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Unknown account bucket",
		},
		{
			name:          "Gift card fails the checksum",
			body:          `{"amount":250,"method":"gift-cards","receipt_ref":"1234567890123456"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "Invalid gift card number",
		},
		{
			name: "Gift card with a valid number",
			body: `{"amount":250,"method":"gift-cards","receipt_ref":"4539148803436467"}`,
			prepareMock: func() {
				service.EXPECT().
					Submit(gomock.Any(), 1, int64(250_00), "gift-cards", domain.BucketChecking, "4539148803436467").
					Return(pending, nil)
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name: "Below-minimum amount rejected by the service",
			body: `{"amount":5,"method":"bank-transfer"}`,
			prepareMock: func() {
				service.EXPECT().
					Submit(gomock.Any(), 1, int64(5_00), "bank-transfer", domain.BucketChecking, "").
					Return(nil, fmt.Errorf("%w: amount below minimum", domain.ErrValidation))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rr := httptest.NewRecorder()
			handler.SubmitDeposit(rr, authedRequest("POST", "/api/transactions/deposit", tt.body, 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
			if tt.expectedCode == http.StatusAccepted {
				var resp dto.TransactionResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, domain.StatusPending, resp.Status)
			}
		})
	}
}

func TestGetHistoryHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "History returned",
			prepareMock: func() {
				service.EXPECT().History(gomock.Any(), 1).Return([]domain.Transaction{
					{ID: uuid.New(), UserID: 1, Type: domain.TxTypeDeposit, Amount: 100_00, Status: domain.StatusCompleted},
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Empty history yields no content",
			prepareMock: func() {
				service.EXPECT().History(gomock.Any(), 1).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Service failure",
			prepareMock: func() {
				service.EXPECT().History(gomock.Any(), 1).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rr := httptest.NewRecorder()
			handler.GetHistory(rr, authedRequest("GET", "/api/transactions", "", 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGetReviewQueueHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().PendingDeposits(gomock.Any()).Return([]domain.Transaction{
		{ID: uuid.New(), UserID: 2, Type: domain.TxTypeDeposit, Amount: 75_00, Status: domain.StatusPending},
		{ID: uuid.New(), UserID: 5, Type: domain.TxTypeDeposit, Amount: 20_00, Status: domain.StatusPending},
	}, nil)

	rr := httptest.NewRecorder()
	handler.GetReviewQueue(rr, httptest.NewRequest("GET", "/api/transactions/admin", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.TransactionResponseDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestResolveHandler(t *testing.T) {
	handler, service := NewMock(t)

	txID := uuid.New()
	confirmed := &domain.Transaction{
		ID:     txID,
		UserID: 1,
		Type:   domain.TxTypeDeposit,
		Amount: 250_00,
		Status: domain.StatusCompleted,
	}

	tests := []struct {
		name          string
		id            string
		body          string
		admin         bool
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:  "Confirm settles the deposit",
			id:    txID.String(),
			body:  `{"decision":"confirm"}`,
			admin: true,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), true, txID, "confirm").Return(confirmed, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Malformed transaction id",
			id:            "not-a-uuid",
			body:          `{"decision":"confirm"}`,
			admin:         true,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid transaction id",
		},
		{
			name:  "Non-admin is rejected",
			id:    txID.String(),
			body:  `{"decision":"confirm"}`,
			admin: false,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), false, txID, "confirm").Return(nil, domain.ErrUnauthorized)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Admin access required",
		},
		{
			name:  "Unknown transaction",
			id:    txID.String(),
			body:  `{"decision":"confirm"}`,
			admin: true,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), true, txID, "confirm").Return(nil, domain.ErrTransactionNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Transaction not found",
		},
		{
			name:  "Second resolve conflicts",
			id:    txID.String(),
			body:  `{"decision":"reject"}`,
			admin: true,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), true, txID, "reject").Return(nil, domain.ErrAlreadyResolved)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "Transaction already resolved",
		},
		{
			name:  "Settlement inconsistency surfaces as a server error",
			id:    txID.String(),
			body:  `{"decision":"confirm"}`,
			admin: true,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), true, txID, "confirm").Return(nil, domain.ErrInconsistency)
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Settlement outcome unknown, operators notified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("PUT", "/api/transactions/admin/"+tt.id, bytes.NewReader([]byte(tt.body)))
			req = withAdmin(withRouteParam(req, "id", tt.id), tt.admin)
			rr := httptest.NewRecorder()

			handler.Resolve(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}

func TestBackfillHandler(t *testing.T) {
	handler, service := NewMock(t)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		id            string
		body          string
		admin         bool
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:  "Inserts a historical entry without touching balances",
			id:    "7",
			body:  `{"type":"deposit","amount":40,"method":"bank-transfer","account":"checking","status":"Completed","date":"2024-03-01T00:00:00Z"}`,
			admin: true,
			prepareMock: func() {
				service.EXPECT().
					Backfill(gomock.Any(), true, &domain.Transaction{
						UserID:  7,
						Type:    domain.TxTypeDeposit,
						Amount:  40_00,
						Method:  "bank-transfer",
						Account: domain.BucketChecking,
						Status:  domain.StatusCompleted,
						Date:    date,
					}).
					Return(&domain.Transaction{ID: uuid.New(), UserID: 7, Status: domain.StatusCompleted}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Invalid user id",
			id:            "x",
			body:          `{}`,
			admin:         true,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid user id",
		},
		{
			name:  "Forbidden for non-admin",
			id:    "7",
			body:  `{"type":"deposit","amount":40,"method":"bank-transfer","account":"checking","status":"Completed","date":"2024-03-01T00:00:00Z"}`,
			admin: false,
			prepareMock: func() {
				service.EXPECT().
					Backfill(gomock.Any(), false, gomock.Any()).
					Return(nil, domain.ErrUnauthorized)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Admin access required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("POST", "/api/transactions/user/"+tt.id, bytes.NewReader([]byte(tt.body)))
			req = withAdmin(withRouteParam(req, "id", tt.id), tt.admin)
			rr := httptest.NewRecorder()

			handler.Backfill(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	handler, service := NewMock(t)

	txID := uuid.New()

	tests := []struct {
		name          string
		id            string
		admin         bool
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:  "Tombstones the entry",
			id:    txID.String(),
			admin: true,
			prepareMock: func() {
				service.EXPECT().Delete(gomock.Any(), true, txID).Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid transaction id",
			id:            "nope",
			admin:         true,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid transaction id",
		},
		{
			name:  "Already deleted",
			id:    txID.String(),
			admin: true,
			prepareMock: func() {
				service.EXPECT().Delete(gomock.Any(), true, txID).Return(domain.ErrTransactionNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Transaction not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("DELETE", "/api/transactions/"+tt.id, nil)
			req = withAdmin(withRouteParam(req, "id", tt.id), tt.admin)
			rr := httptest.NewRecorder()

			handler.Delete(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}
