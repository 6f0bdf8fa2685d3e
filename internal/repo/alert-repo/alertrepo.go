package alertrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
)

// Repository persists operator alerts in their own table, deliberately
// outside the transaction log and outside any caller transaction: an alert
// about a suspect log must not depend on that log committing.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	query := `
        INSERT INTO alerts (kind, tx_id, user_id, details)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, alert.Kind, alert.TxID, alert.UserID, alert.Details).
		Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		zap.L().Error("can't save alert", zap.Error(err))
		return nil, err
	}
	return alert, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	query := `
        SELECT id, kind, tx_id, user_id, details, created_at
        FROM alerts
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list alerts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.Kind, &a.TxID, &a.UserID, &a.Details, &a.CreatedAt); err != nil {
			zap.L().Error("can't scan alert row", zap.Error(err))
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
