package investservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockInvestmentRepo, *MockAccountRepo, *MockTransactionRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	investmentRepo := NewMockInvestmentRepo(ctrl)
	accountRepo := NewMockAccountRepo(ctrl)
	txRepo := NewMockTransactionRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	service := New(investmentRepo, accountRepo, txRepo, txManager)
	defer ctrl.Finish()
	return service, investmentRepo, accountRepo, txRepo, txManager
}

func passthroughBegin(txManager *pg.MockTXManager) {
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
}

func TestProgress(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	maturity := start.AddDate(0, 0, 90)

	tests := []struct {
		name     string
		now      time.Time
		expected float64
	}{
		{name: "Before start clamps to zero", now: start.Add(-time.Hour), expected: 0},
		{name: "At start", now: start, expected: 0},
		{name: "Halfway", now: start.AddDate(0, 0, 45), expected: 0.5},
		{name: "At maturity", now: maturity, expected: 1},
		{name: "After maturity clamps to one", now: maturity.AddDate(0, 0, 30), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Progress(start, maturity, tt.now), 1e-9)
		})
	}

	t.Run("Degenerate term reads as zero", func(t *testing.T) {
		assert.Zero(t, Progress(start, start, start.Add(time.Hour)))
		assert.Zero(t, Progress(start, start.Add(-time.Hour), start))
	})

	t.Run("Monotonic while the clock advances", func(t *testing.T) {
		prev := 0.0
		for d := 0; d <= 90; d += 5 {
			p := Progress(start, maturity, start.AddDate(0, 0, d))
			assert.GreaterOrEqual(t, p, prev)
			prev = p
		}
	})
}

func TestExpectedProfit(t *testing.T) {
	// gold at 25% on 500.00 yields 125.00
	assert.Equal(t, int64(125_00), ExpectedProfit(500_00, 0.25))
	// starter at 10% on 50.00 yields 5.00
	assert.Equal(t, int64(5_00), ExpectedProfit(50_00, 0.10))
	assert.Equal(t, int64(0), ExpectedProfit(0, 0.50))
}

func TestOpen(t *testing.T) {
	t.Run("Locks principal atomically", func(t *testing.T) {
		service, investmentRepo, accountRepo, txRepo, txManager := NewMock(t)
		start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		service.now = func() time.Time { return start }

		accountRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Balance{
			UserID: 1, Checking: 600_00,
		}, nil)
		passthroughBegin(txManager)
		accountRepo.EXPECT().Debit(gomock.Any(), 1, domain.BucketChecking, int64(500_00)).Return(nil)
		investmentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, inv *domain.Investment) (*domain.Investment, error) {
				assert.Equal(t, "gold", inv.Plan)
				assert.Equal(t, 0.25, inv.Rate)
				assert.Equal(t, start.AddDate(0, 0, 90), inv.MaturityDate)
				inv.ID = 7
				return inv, nil
			})
		txRepo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
				assert.Equal(t, domain.TxTypeInvest, tx.Type)
				assert.Equal(t, domain.StatusCompleted, tx.Status)
				assert.Equal(t, "gold", tx.Method)
				return tx, nil
			})

		inv, err := service.Open(context.Background(), 1, "gold", 500_00, domain.BucketChecking)
		assert.NoError(t, err)
		assert.Equal(t, 7, inv.ID)
		assert.Equal(t, int64(125_00), ExpectedProfit(inv.Amount, inv.Rate))
	})

	t.Run("Unknown plan", func(t *testing.T) {
		service, _, _, _, _ := NewMock(t)
		_, err := service.Open(context.Background(), 1, "diamond", 500_00, domain.BucketChecking)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Amount outside plan bounds", func(t *testing.T) {
		service, _, _, _, _ := NewMock(t)
		_, err := service.Open(context.Background(), 1, "gold", 50_00, domain.BucketChecking)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = service.Open(context.Background(), 1, "gold", 2_000_00, domain.BucketChecking)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Unknown bucket", func(t *testing.T) {
		service, _, _, _, _ := NewMock(t)
		_, err := service.Open(context.Background(), 1, "gold", 500_00, "offshore")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Insufficient funds across all buckets", func(t *testing.T) {
		service, _, accountRepo, _, _ := NewMock(t)
		accountRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Balance{
			UserID: 1, Checking: 100_00, Savings: 100_00,
		}, nil)

		_, err := service.Open(context.Background(), 1, "gold", 500_00, domain.BucketChecking)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("Debit failure aborts everything", func(t *testing.T) {
		service, _, accountRepo, _, txManager := NewMock(t)
		accountRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Balance{
			UserID: 1, Checking: 600_00,
		}, nil)
		passthroughBegin(txManager)
		accountRepo.EXPECT().Debit(gomock.Any(), 1, domain.BucketChecking, int64(500_00)).
			Return(domain.ErrInsufficientFunds)

		_, err := service.Open(context.Background(), 1, "gold", 500_00, domain.BucketChecking)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})
}

func TestPlans(t *testing.T) {
	service, _, _, _, _ := NewMock(t)

	catalog := service.Plans()
	assert.Len(t, catalog, 4)
	for _, p := range catalog {
		assert.Positive(t, p.Rate)
		assert.Positive(t, p.Days)
		assert.Less(t, p.Min, p.Max)
	}
}

func TestList(t *testing.T) {
	service, investmentRepo, _, _, _ := NewMock(t)

	investments := []domain.Investment{{ID: 7, UserID: 1, Plan: "gold"}}
	investmentRepo.EXPECT().ListByUser(gomock.Any(), 1).Return(investments, nil)

	got, err := service.List(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, investments, got)
}
