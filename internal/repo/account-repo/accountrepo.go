package accountrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// bucketColumn maps a bucket name to its column. Input never reaches the
// SQL text unless it matches one of the three known buckets.
func bucketColumn(bucket string) (string, error) {
	switch bucket {
	case domain.BucketChecking:
		return "checking", nil
	case domain.BucketSavings:
		return "savings", nil
	case domain.BucketUSDT:
		return "usdt", nil
	}
	return "", fmt.Errorf("%w: unknown bucket %q", domain.ErrValidation, bucket)
}

func (r *Repository) GetByUserID(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
        SELECT id, user_id, checking, savings, usdt
        FROM balances
        WHERE user_id = $1
    `
	var balance domain.Balance
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&balance.ID, &balance.UserID, &balance.Checking, &balance.Savings, &balance.USDT)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidAccount
		}
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

// GetByUserIDForUpdate reads the row under a row lock. The snapshot a
// caller diffs against cannot shift until its transaction ends, so it must
// run inside one.
func (r *Repository) GetByUserIDForUpdate(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
        SELECT id, user_id, checking, savings, usdt
        FROM balances
        WHERE user_id = $1
        FOR UPDATE
    `
	var balance domain.Balance
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&balance.ID, &balance.UserID, &balance.Checking, &balance.Savings, &balance.USDT)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidAccount
		}
		zap.L().Error("failed to lock balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) CreateForUser(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
        INSERT INTO balances (user_id, checking, savings, usdt)
        VALUES ($1, 0, 0, 0)
        RETURNING id, user_id, checking, savings, usdt
    `
	var balance domain.Balance
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&balance.ID, &balance.UserID, &balance.Checking, &balance.Savings, &balance.USDT)
	if err != nil {
		zap.L().Error("failed to create balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

// Credit increases the named bucket. The single UPDATE serializes concurrent
// mutations of the same row through the row lock.
func (r *Repository) Credit(ctx context.Context, userID int, bucket string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	column, err := bucketColumn(bucket)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE balances SET %s = %s + $1 WHERE user_id = $2 RETURNING id`, column, column)
	var id int
	err = r.db.QueryRow(ctx, query, amount, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidAccount
		}
		zap.L().Error("failed to credit balance", zap.Error(err))
		return err
	}
	return nil
}

// Debit decreases the named bucket, guarded so the bucket can never go
// negative: the UPDATE only matches while enough funds remain.
func (r *Repository) Debit(ctx context.Context, userID int, bucket string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	column, err := bucketColumn(bucket)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE balances SET %s = %s - $1 WHERE user_id = $2 AND %s >= $1 RETURNING id`, column, column, column)
	var id int
	err = r.db.QueryRow(ctx, query, amount, userID).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("failed to debit balance", zap.Error(err))
		return err
	}

	// No row matched: either the account is unknown or funds are short.
	var one int
	err = r.db.QueryRow(ctx, `SELECT 1 FROM balances WHERE user_id = $1`, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrInvalidAccount
	}
	if err != nil {
		zap.L().Error("failed to check balance existence", zap.Error(err))
		return err
	}
	return domain.ErrInsufficientFunds
}

// SetBalances overwrites all three buckets in one statement. Callers are
// responsible for pairing it with audit records.
func (r *Repository) SetBalances(ctx context.Context, userID int, checking, savings, usdt int64) (*domain.Balance, error) {
	if checking < 0 || savings < 0 || usdt < 0 {
		return nil, fmt.Errorf("%w: balances cannot be negative", domain.ErrValidation)
	}

	query := `
        UPDATE balances
        SET checking = $1, savings = $2, usdt = $3
        WHERE user_id = $4
        RETURNING id, user_id, checking, savings, usdt
    `
	var balance domain.Balance
	err := r.db.QueryRow(ctx, query, checking, savings, usdt, userID).
		Scan(&balance.ID, &balance.UserID, &balance.Checking, &balance.Savings, &balance.USDT)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidAccount
		}
		zap.L().Error("failed to set balances", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}
