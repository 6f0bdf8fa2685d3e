package accountservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockAccountRepo, *MockTransactionRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	accountRepo := NewMockAccountRepo(ctrl)
	txRepo := NewMockTransactionRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	service := New(accountRepo, txRepo, txManager)
	defer ctrl.Finish()
	return service, accountRepo, txRepo, txManager
}

func passthroughBegin(txManager *pg.MockTXManager) {
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name            string
		prepareMock     func(accountRepo *MockAccountRepo)
		expectedBalance *domain.Balance
		expectedError   error
	}{
		{
			name: "Retrieve balance successfully",
			prepareMock: func(accountRepo *MockAccountRepo) {
				accountRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Balance{
					UserID:   1,
					Checking: 100_00,
					Savings:  50_00,
				}, nil)
			},
			expectedBalance: &domain.Balance{UserID: 1, Checking: 100_00, Savings: 50_00},
		},
		{
			name: "Error retrieving balance",
			prepareMock: func(accountRepo *MockAccountRepo) {
				accountRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, accountRepo, _, _ := NewMock(t)
			tt.prepareMock(accountRepo)

			balance, err := service.GetBalance(context.Background(), 1)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestCreateBalance(t *testing.T) {
	service, accountRepo, _, _ := NewMock(t)

	accountRepo.EXPECT().CreateForUser(gomock.Any(), 2).Return(&domain.Balance{ID: 5, UserID: 2}, nil)

	balance, err := service.CreateBalance(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, 5, balance.ID)
}

func TestSetBalances(t *testing.T) {
	t.Run("Requires admin", func(t *testing.T) {
		service, _, _, _ := NewMock(t)
		_, err := service.SetBalances(context.Background(), false, 1, 0, 0, 0)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Synthesizes one adjustment per changed bucket", func(t *testing.T) {
		service, accountRepo, txRepo, txManager := NewMock(t)

		passthroughBegin(txManager)
		accountRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(&domain.Balance{
			UserID: 1, Checking: 100_00, Savings: 50_00, USDT: 10_00,
		}, nil)
		accountRepo.EXPECT().SetBalances(gomock.Any(), 1, int64(150_00), int64(50_00), int64(5_00)).
			Return(&domain.Balance{UserID: 1, Checking: 150_00, Savings: 50_00, USDT: 5_00}, nil)

		var adjustments []*domain.Transaction
		txRepo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
				adjustments = append(adjustments, tx)
				return tx, nil
			}).Times(2)

		balance, err := service.SetBalances(context.Background(), true, 1, 150_00, 50_00, 5_00)
		assert.NoError(t, err)
		assert.Equal(t, int64(150_00), balance.Checking)

		// checking went up 50, savings unchanged, usdt went down 5; the
		// adjustment amount is the absolute delta in both directions.
		assert.Len(t, adjustments, 2)
		for _, adj := range adjustments {
			assert.Equal(t, domain.TxTypeAdjustment, adj.Type)
			assert.Equal(t, "manual-correction", adj.Method)
			assert.Equal(t, domain.StatusCompleted, adj.Status)
		}
		assert.Equal(t, domain.BucketChecking, adjustments[0].Account)
		assert.Equal(t, int64(50_00), adjustments[0].Amount)
		assert.Equal(t, domain.BucketUSDT, adjustments[1].Account)
		assert.Equal(t, int64(5_00), adjustments[1].Amount)
	})

	t.Run("No adjustments when nothing changes", func(t *testing.T) {
		service, accountRepo, _, txManager := NewMock(t)

		passthroughBegin(txManager)
		current := &domain.Balance{UserID: 1, Checking: 100_00, Savings: 50_00, USDT: 10_00}
		accountRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 1).Return(current, nil)
		accountRepo.EXPECT().SetBalances(gomock.Any(), 1, int64(100_00), int64(50_00), int64(10_00)).Return(current, nil)

		_, err := service.SetBalances(context.Background(), true, 1, 100_00, 50_00, 10_00)
		assert.NoError(t, err)
	})

	t.Run("Unknown account aborts the overwrite", func(t *testing.T) {
		service, accountRepo, _, txManager := NewMock(t)

		passthroughBegin(txManager)
		accountRepo.EXPECT().GetByUserIDForUpdate(gomock.Any(), 42).Return(nil, domain.ErrInvalidAccount)

		_, err := service.SetBalances(context.Background(), true, 42, 0, 0, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidAccount)
	})
}
