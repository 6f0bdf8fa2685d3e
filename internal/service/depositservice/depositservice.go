package depositservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/observability"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

const (
	DecisionConfirm = "confirm"
	DecisionReject  = "reject"
)

type TransactionRepo interface {
	Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Transition(ctx context.Context, txID uuid.UUID, newStatus string) (*domain.Transaction, error)
	FindByID(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID int) ([]domain.Transaction, error)
	ListPending(ctx context.Context, txType string) ([]domain.Transaction, error)
	SoftDelete(ctx context.Context, txID uuid.UUID) error
}

type AccountRepo interface {
	Credit(ctx context.Context, userID int, bucket string, amount int64) error
}

type AlertRepo interface {
	Create(ctx context.Context, alert *domain.Alert) (*domain.Alert, error)
}

// Notifier is the notification collaborator; delivery is entirely its
// concern and failures never affect the ledger.
type Notifier interface {
	DepositSubmitted(ctx context.Context, tx *domain.Transaction)
	DepositResolved(ctx context.Context, tx *domain.Transaction)
}

type Service struct {
	txRepo      TransactionRepo
	accountRepo AccountRepo
	alertRepo   AlertRepo
	txManager   pg.TXManager
	notifier    Notifier
	minDeposit  int64 // cents
}

func New(txRepo TransactionRepo, accountRepo AccountRepo, alertRepo AlertRepo, txManager pg.TXManager, notifier Notifier, minDepositCents int64) *Service {
	return &Service{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		alertRepo:   alertRepo,
		txManager:   txManager,
		notifier:    notifier,
		minDeposit:  minDepositCents,
	}
}

// Submit records a deposit intent as a Pending log entry. Balances are not
// touched until a reviewer confirms.
func (s *Service) Submit(ctx context.Context, userID int, amount int64, method, bucket, receiptRef string) (*domain.Transaction, error) {
	if amount < s.minDeposit {
		return nil, fmt.Errorf("%w: minimum deposit is %d cents", domain.ErrValidation, s.minDeposit)
	}

	tx, err := s.txRepo.Append(ctx, &domain.Transaction{
		UserID:     userID,
		Type:       domain.TxTypeDeposit,
		Amount:     amount,
		Method:     method,
		Account:    bucket,
		Status:     domain.StatusPending,
		ReceiptRef: receiptRef,
	})
	if err != nil {
		zap.L().Error("failed to submit deposit", zap.Error(err))
		return nil, err
	}

	observability.IncrementDepositSubmitted(method)
	s.notifier.DepositSubmitted(ctx, tx)
	zap.L().Info("deposit submitted",
		zap.String("txID", tx.ID.String()),
		zap.Int("userID", userID),
		zap.Int64("amount", amount),
		zap.String("bucket", bucket))
	return tx, nil
}

// Resolve settles a pending deposit exactly once. The status transition and
// the credit run in one database transaction, so the reviewer that wins the
// transition is also the one whose credit lands; losers get
// ErrAlreadyResolved and no balance mutation.
func (s *Service) Resolve(ctx context.Context, isAdmin bool, txID uuid.UUID, decision string) (*domain.Transaction, error) {
	if !isAdmin {
		return nil, domain.ErrUnauthorized
	}

	var target string
	switch decision {
	case DecisionConfirm:
		target = domain.StatusCompleted
	case DecisionReject:
		target = domain.StatusFailed
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	// Type is immutable, so this pre-check cannot race with the transition.
	tx, err := s.txRepo.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.Type != domain.TxTypeDeposit {
		return nil, fmt.Errorf("%w: only deposits can be resolved", domain.ErrValidation)
	}

	var resolved *domain.Transaction
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		claimed, err := s.txRepo.Transition(ctx, txID, target)
		if err != nil {
			return err
		}
		resolved = claimed

		if target == domain.StatusCompleted {
			if err := s.accountRepo.Credit(ctx, claimed.UserID, claimed.Account, claimed.Amount); err != nil {
				return fmt.Errorf("settle deposit %s: %w", txID, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pg.ErrCommitFailed) {
			// The commit outcome is unknown: the transition may be on disk
			// without its credit, or both, or neither. Never retry the
			// credit; raise the alarm and hand it to an operator.
			s.raiseInconsistency(ctx, tx, err)
			return nil, fmt.Errorf("%w: deposit %s", domain.ErrInconsistency, txID)
		}
		return nil, err
	}

	observability.IncrementDepositResolved(decision)
	s.notifier.DepositResolved(ctx, resolved)
	zap.L().Info("deposit resolved",
		zap.String("txID", txID.String()),
		zap.String("decision", decision))
	return resolved, nil
}

func (s *Service) raiseInconsistency(ctx context.Context, tx *domain.Transaction, cause error) {
	observability.IncrementInconsistency()
	zap.L().Error("FATAL settlement inconsistency, manual repair required",
		zap.String("txID", tx.ID.String()),
		zap.Int("userID", tx.UserID),
		zap.Int64("amount", tx.Amount),
		zap.String("bucket", tx.Account),
		zap.Error(cause))

	// The alert table lives outside the suspect transaction, on its own
	// connection path. The write is detached from the caller's context so
	// an abandoned resolve cannot take the alert down with it.
	alertCtx := context.WithoutCancel(ctx)
	_, alertErr := s.alertRepo.Create(alertCtx, &domain.Alert{
		Kind:    "settlement_inconsistency",
		TxID:    tx.ID,
		UserID:  tx.UserID,
		Details: fmt.Sprintf("deposit of %d cents to %s: %v", tx.Amount, tx.Account, cause),
	})
	if alertErr != nil {
		zap.L().Error("failed to persist inconsistency alert", zap.Error(alertErr))
	}
}

// PendingDeposits is the review queue projection: pending deposits, newest
// first, straight off the log so a resolver's own read always reflects a
// resolve that already returned.
func (s *Service) PendingDeposits(ctx context.Context) ([]domain.Transaction, error) {
	pending, err := s.txRepo.ListPending(ctx, domain.TxTypeDeposit)
	if err != nil {
		zap.L().Error("failed to list pending deposits", zap.Error(err))
		return nil, err
	}
	observability.SetPendingDeposits(len(pending))
	return pending, nil
}

// NewSince compares two review queue snapshots and returns the entries that
// appeared since the previous one. Pollers use it to decide what to flag;
// the core keeps no "last seen" state of its own.
func NewSince(previous, current []domain.Transaction) []domain.Transaction {
	seen := make(map[uuid.UUID]struct{}, len(previous))
	for _, tx := range previous {
		seen[tx.ID] = struct{}{}
	}
	var fresh []domain.Transaction
	for _, tx := range current {
		if _, ok := seen[tx.ID]; !ok {
			fresh = append(fresh, tx)
		}
	}
	return fresh
}

// History returns the caller's full transaction history, newest first.
func (s *Service) History(ctx context.Context, userID int) ([]domain.Transaction, error) {
	return s.txRepo.ListByUser(ctx, userID)
}

// Backfill lets an administrator insert a historical record. Backfill rows
// are record-only: whatever their status, they never touch the live
// balance.
func (s *Service) Backfill(ctx context.Context, isAdmin bool, tx *domain.Transaction) (*domain.Transaction, error) {
	if !isAdmin {
		return nil, domain.ErrUnauthorized
	}
	switch tx.Status {
	case domain.StatusPending, domain.StatusCompleted, domain.StatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, tx.Status)
	}

	created, err := s.txRepo.Append(ctx, tx)
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction backfilled",
		zap.String("txID", created.ID.String()),
		zap.Int("userID", created.UserID),
		zap.String("status", created.Status))
	return created, nil
}

// Delete tombstones a log entry. The original system hard-deleted rows;
// soft delete keeps the audit trail while hiding the entry everywhere.
func (s *Service) Delete(ctx context.Context, isAdmin bool, txID uuid.UUID) error {
	if !isAdmin {
		return domain.ErrUnauthorized
	}
	if err := s.txRepo.SoftDelete(ctx, txID); err != nil {
		return err
	}
	zap.L().Warn("transaction deleted", zap.String("txID", txID.String()))
	return nil
}
