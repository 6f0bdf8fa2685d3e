package maturity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/observability"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

// redeemingInvestments guards against the same investment entering the pool
// twice while a previous redemption is still in flight.
var redeemingInvestments sync.Map

type InvestmentRepo interface {
	FindMatured(ctx context.Context, limit uint32) ([]domain.Investment, error)
	MarkRedeemed(ctx context.Context, id int) error
}

type AccountRepo interface {
	Credit(ctx context.Context, userID int, bucket string, amount int64) error
}

type TransactionRepo interface {
	Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

type Notifier interface {
	InvestmentMatured(ctx context.Context, inv *domain.Investment, payout int64)
}

// Service sweeps matured investments and pays them out. Each redemption is
// one database transaction: close the investment, append the payout log
// entry, credit the source bucket. The close is a guarded update, so a
// sweep racing another sweep (or a manual redemption) settles each
// investment exactly once.
type Service struct {
	investmentRepo InvestmentRepo
	accountRepo    AccountRepo
	txRepo         TransactionRepo
	txManager      pg.TXManager
	notifier       Notifier
	limit          uint32
	workerPool     WorkerPoolI
	sweepInterval  time.Duration
}

func New(investmentRepo InvestmentRepo, accountRepo AccountRepo, txRepo TransactionRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		txRepo:         txRepo,
		txManager:      txManager,
		notifier:       notifier,
		limit:          1000,
		workerPool:     NewWorkerPool(10, 10),
		sweepInterval:  time.Minute,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Maturity sweeper started", zap.Duration("interval", s.sweepInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping maturity sweeper")
			s.workerPool.Close()
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep fans matured investments out to the worker pool.
func (s *Service) Sweep(ctx context.Context) {
	matured, err := s.investmentRepo.FindMatured(ctx, s.limit)
	if err != nil {
		zap.L().Error("Failed to fetch matured investments", zap.Error(err))
		observability.IncrementMaturitySweep("error")
		return
	}

	var g errgroup.Group
	for _, inv := range matured {
		inv := inv

		if _, loaded := redeemingInvestments.LoadOrStore(inv.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.Submit(ctx, func() error {
				defer redeemingInvestments.Delete(inv.ID)
				return s.redeem(ctx, inv)
			})
			if err != nil {
				redeemingInvestments.Delete(inv.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error sweeping matured investments", zap.Error(err))
		observability.IncrementMaturitySweep("error")
		return
	}
	observability.IncrementMaturitySweep("ok")
}

func (s *Service) redeem(ctx context.Context, inv domain.Investment) error {
	payout := inv.Amount + domain.ProfitCents(inv.Amount, inv.Rate)

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.investmentRepo.MarkRedeemed(ctx, inv.ID); err != nil {
			return err
		}
		_, err := s.txRepo.Append(ctx, &domain.Transaction{
			UserID:  inv.UserID,
			Type:    domain.TxTypeDeposit,
			Amount:  payout,
			Method:  "investment-redemption",
			Account: inv.SourceBucket,
			Status:  domain.StatusCompleted,
		})
		if err != nil {
			return err
		}
		return s.accountRepo.Credit(ctx, inv.UserID, inv.SourceBucket, payout)
	})
	if err != nil {
		// Another sweeper already claimed it; nothing to do.
		if errors.Is(err, domain.ErrAlreadyResolved) {
			return nil
		}
		return fmt.Errorf("redeem investment %d: %w", inv.ID, err)
	}

	s.notifier.InvestmentMatured(ctx, &inv, payout)
	zap.L().Info("Investment redeemed",
		zap.Int("investmentID", inv.ID),
		zap.Int("userID", inv.UserID),
		zap.String("plan", inv.Plan),
		zap.Int64("payout", payout))
	return nil
}
