package accountservice

import (
	"context"

	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

type AccountRepo interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Balance, error)
	GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Balance, error)
	CreateForUser(ctx context.Context, userID int) (*domain.Balance, error)
	SetBalances(ctx context.Context, userID int, checking, savings, usdt int64) (*domain.Balance, error)
}

type TransactionRepo interface {
	Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

type Service struct {
	accountRepo AccountRepo
	txRepo      TransactionRepo
	txManager   pg.TXManager
}

func New(accountRepo AccountRepo, txRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		txManager:   txManager,
	}
}

func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	balance, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func (s *Service) CreateBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	balance, err := s.accountRepo.CreateForUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to create balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

// SetBalances is the administrative escape hatch: an absolute overwrite of
// all three buckets. Each changed bucket gets a synthesized, audit-only
// adjustment record in the same database transaction, so the overwrite can
// never land without its paper trail.
func (s *Service) SetBalances(ctx context.Context, isAdmin bool, userID int, checking, savings, usdt int64) (*domain.Balance, error) {
	if !isAdmin {
		return nil, domain.ErrUnauthorized
	}

	var updated *domain.Balance
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		// Locked read: the deltas below are computed against a snapshot no
		// concurrent credit can move.
		current, err := s.accountRepo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		updated, err = s.accountRepo.SetBalances(ctx, userID, checking, savings, usdt)
		if err != nil {
			return err
		}

		deltas := []struct {
			bucket string
			amount int64
		}{
			{domain.BucketChecking, checking - current.Checking},
			{domain.BucketSavings, savings - current.Savings},
			{domain.BucketUSDT, usdt - current.USDT},
		}
		for _, d := range deltas {
			if d.amount == 0 {
				continue
			}
			amount := d.amount
			if amount < 0 {
				amount = -amount
			}
			_, err := s.txRepo.Append(ctx, &domain.Transaction{
				UserID:  userID,
				Type:    domain.TxTypeAdjustment,
				Amount:  amount,
				Method:  "manual-correction",
				Account: d.bucket,
				Status:  domain.StatusCompleted,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to set balances", zap.Error(err), zap.Int("userID", userID))
		return nil, err
	}

	zap.L().Info("balances overwritten by admin",
		zap.Int("userID", userID),
		zap.Int64("checking", checking),
		zap.Int64("savings", savings),
		zap.Int64("usdt", usdt))
	return updated, nil
}
