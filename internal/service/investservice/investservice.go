package investservice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/observability"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

// plans is the read-only catalog; bounds are in cents. Rates are the full
// fractional return for the term.
var plans = []domain.InvestmentPlan{
	{Name: "starter", Rate: 0.10, Term: "1 month", Days: 30, Min: 50_00, Max: 500_00},
	{Name: "gold", Rate: 0.25, Term: "3 months", Days: 90, Min: 100_00, Max: 1_000_00},
	{Name: "platinum", Rate: 0.40, Term: "6 months", Days: 180, Min: 1_000_00, Max: 50_000_00},
	{Name: "titan", Rate: 0.50, Term: "12 months", Days: 365, Min: 5_000_00, Max: 100_000_00},
}

type InvestmentRepo interface {
	Create(ctx context.Context, inv *domain.Investment) (*domain.Investment, error)
	ListByUser(ctx context.Context, userID int) ([]domain.Investment, error)
}

type AccountRepo interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Balance, error)
	Debit(ctx context.Context, userID int, bucket string, amount int64) error
}

type TransactionRepo interface {
	Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

type Service struct {
	investmentRepo InvestmentRepo
	accountRepo    AccountRepo
	txRepo         TransactionRepo
	txManager      pg.TXManager
	now            func() time.Time
}

func New(investmentRepo InvestmentRepo, accountRepo AccountRepo, txRepo TransactionRepo, txManager pg.TXManager) *Service {
	return &Service{
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		txRepo:         txRepo,
		txManager:      txManager,
		now:            time.Now,
	}
}

// Plans returns the catalog.
func (s *Service) Plans() []domain.InvestmentPlan {
	return plans
}

func findPlan(name string) (*domain.InvestmentPlan, bool) {
	for i := range plans {
		if plans[i].Name == name {
			return &plans[i], true
		}
	}
	return nil, false
}

// Progress is the accrual position of an investment in [0, 1]. A
// degenerate term (maturity not after start) reads as 0, never NaN.
func Progress(startDate, maturityDate, now time.Time) float64 {
	if !maturityDate.After(startDate) {
		return 0
	}
	p := float64(now.Sub(startDate)) / float64(maturityDate.Sub(startDate))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ExpectedProfit is principal*rate in cents.
func ExpectedProfit(amount int64, rate float64) int64 {
	return domain.ProfitCents(amount, rate)
}

// Open locks principal into a plan: the source bucket debit, the investment
// record and the settled log entry land in one database transaction, so
// partial application cannot happen.
func (s *Service) Open(ctx context.Context, userID int, planName string, amount int64, sourceBucket string) (*domain.Investment, error) {
	plan, ok := findPlan(planName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrValidation, planName)
	}
	if amount < plan.Min || amount > plan.Max {
		return nil, fmt.Errorf("%w: amount outside plan bounds [%d, %d]", domain.ErrValidation, plan.Min, plan.Max)
	}
	if !domain.IsBucket(sourceBucket) {
		return nil, fmt.Errorf("%w: unknown bucket %q", domain.ErrValidation, sourceBucket)
	}

	balance, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount > balance.Total() {
		return nil, domain.ErrInsufficientFunds
	}

	start := s.now()
	investment := &domain.Investment{
		UserID:       userID,
		Plan:         plan.Name,
		Amount:       amount,
		Rate:         plan.Rate,
		SourceBucket: sourceBucket,
		StartDate:    start,
		MaturityDate: start.AddDate(0, 0, plan.Days),
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.accountRepo.Debit(ctx, userID, sourceBucket, amount); err != nil {
			return err
		}
		if _, err := s.investmentRepo.Create(ctx, investment); err != nil {
			return err
		}
		_, err := s.txRepo.Append(ctx, &domain.Transaction{
			UserID:  userID,
			Type:    domain.TxTypeInvest,
			Amount:  amount,
			Method:  plan.Name,
			Account: sourceBucket,
			Status:  domain.StatusCompleted,
			Date:    start,
		})
		return err
	})
	if err != nil {
		zap.L().Error("failed to open investment", zap.Error(err), zap.Int("userID", userID))
		return nil, err
	}

	observability.IncrementInvestmentOpened()
	zap.L().Info("investment opened",
		zap.Int("userID", userID),
		zap.String("plan", plan.Name),
		zap.Int64("amount", amount))
	return investment, nil
}

// List returns the user's investments, newest first.
func (s *Service) List(ctx context.Context, userID int) ([]domain.Investment, error) {
	investments, err := s.investmentRepo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to list investments", zap.Error(err))
		return nil, err
	}
	return investments, nil
}
