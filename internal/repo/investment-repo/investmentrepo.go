package investmentrepo

import (
	"context"

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

func (r *Repository) Create(ctx context.Context, inv *domain.Investment) (*domain.Investment, error) {
	query := `
        INSERT INTO investments (user_id, plan, amount, rate, source_bucket, start_date, maturity_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, inv.UserID, inv.Plan, inv.Amount, inv.Rate,
		inv.SourceBucket, inv.StartDate, inv.MaturityDate).Scan(&inv.ID)
	if err != nil {
		zap.L().Error("can't save investment", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.Investment, error) {
	query := `
        SELECT id, user_id, plan, amount, rate, source_bucket, start_date, maturity_date, redeemed_at
        FROM investments
        WHERE user_id = $1
        ORDER BY start_date DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't list investments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		var inv domain.Investment
		err := rows.Scan(&inv.ID, &inv.UserID, &inv.Plan, &inv.Amount, &inv.Rate,
			&inv.SourceBucket, &inv.StartDate, &inv.MaturityDate, &inv.RedeemedAt)
		if err != nil {
			zap.L().Error("can't scan investment row", zap.Error(err))
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, nil
}

// FindMatured returns unredeemed investments whose maturity date has passed.
func (r *Repository) FindMatured(ctx context.Context, limit uint32) ([]domain.Investment, error) {
	query := `
        SELECT id, user_id, plan, amount, rate, source_bucket, start_date, maturity_date, redeemed_at
        FROM investments
        WHERE maturity_date <= NOW() AND redeemed_at IS NULL
        ORDER BY maturity_date ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't find matured investments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		var inv domain.Investment
		err := rows.Scan(&inv.ID, &inv.UserID, &inv.Plan, &inv.Amount, &inv.Rate,
			&inv.SourceBucket, &inv.StartDate, &inv.MaturityDate, &inv.RedeemedAt)
		if err != nil {
			zap.L().Error("can't scan matured investment row", zap.Error(err))
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, nil
}

// MarkRedeemed closes an investment exactly once; a second caller loses the
// guarded UPDATE and gets ErrAlreadyResolved.
func (r *Repository) MarkRedeemed(ctx context.Context, id int) error {
	query := `UPDATE investments SET redeemed_at = NOW() WHERE id = $1 AND redeemed_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("can't mark investment redeemed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}
