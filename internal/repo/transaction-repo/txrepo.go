package txrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

const txColumns = "id, user_id, type, amount, method, account, status, receipt_ref, date, deleted_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTx(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Method, &tx.Account,
		&tx.Status, &tx.ReceiptRef, &tx.Date, &tx.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Append inserts a new log entry. User-initiated entries come in Pending;
// administrative backfill may carry any status and never touches balances.
func (r *Repository) Append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if !domain.IsBucket(tx.Account) {
		return nil, fmt.Errorf("%w: unknown bucket %q", domain.ErrValidation, tx.Account)
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Status == "" {
		tx.Status = domain.StatusPending
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}

	query := `
        INSERT INTO transactions (id, user_id, type, amount, method, account, status, receipt_ref, date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, query, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Method,
		tx.Account, tx.Status, tx.ReceiptRef, tx.Date)
	if err != nil {
		zap.L().Error("can't append transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// Transition moves a Pending entry to a terminal status. The guarded UPDATE
// is the serialization point: of N concurrent callers for one id, exactly
// one gets the updated row back; everyone else gets ErrAlreadyResolved.
func (r *Repository) Transition(ctx context.Context, txID uuid.UUID, newStatus string) (*domain.Transaction, error) {
	if newStatus != domain.StatusCompleted && newStatus != domain.StatusFailed {
		return nil, fmt.Errorf("%w: Pending -> %s", domain.ErrInvalidStateTransition, newStatus)
	}

	query := `
        UPDATE transactions
        SET status = $1
        WHERE id = $2 AND status = 'Pending' AND deleted_at IS NULL
        RETURNING ` + txColumns
	tx, err := scanTx(r.db.QueryRow(ctx, query, newStatus, txID))
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("can't transition transaction", zap.Error(err))
		return nil, err
	}

	// Lost the race or the id never existed; tell callers which.
	var status string
	err = r.db.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1 AND deleted_at IS NULL`, txID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		zap.L().Error("can't read transaction status", zap.Error(err))
		return nil, err
	}
	return nil, domain.ErrAlreadyResolved
}

func (r *Repository) FindByID(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1 AND deleted_at IS NULL`
	tx, err := scanTx(r.db.QueryRow(ctx, query, txID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.Transaction, error) {
	query := `
        SELECT ` + txColumns + `
        FROM transactions
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY date DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// ListPending returns the pending entries of one type, newest first. It is
// the query behind the review queue.
func (r *Repository) ListPending(ctx context.Context, txType string) ([]domain.Transaction, error) {
	query := `
        SELECT ` + txColumns + `
        FROM transactions
        WHERE status = 'Pending' AND type = $1 AND deleted_at IS NULL
        ORDER BY date DESC
    `
	rows, err := r.db.Query(ctx, query, txType)
	if err != nil {
		zap.L().Error("can't list pending transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// SoftDelete tombstones an entry. The row stays on disk for audit; every
// projection filters it out.
func (r *Repository) SoftDelete(ctx context.Context, txID uuid.UUID) error {
	query := `UPDATE transactions SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, txID)
	if err != nil {
		zap.L().Error("can't delete transaction", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Method, &tx.Account,
			&tx.Status, &tx.ReceiptRef, &tx.Date, &tx.DeletedAt)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
