package investmentrepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/samirahpartel/kirtbank/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	start := time.Now()
	inv := &domain.Investment{
		UserID:       1,
		Plan:         "gold",
		Amount:       500_00,
		Rate:         0.25,
		SourceBucket: domain.BucketChecking,
		StartDate:    start,
		MaturityDate: start.AddDate(0, 0, 90),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO investments (user_id, plan, amount, rate, source_bucket, start_date, maturity_date) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`)).
		WithArgs(1, "gold", int64(500_00), 0.25, domain.BucketChecking, inv.StartDate, inv.MaturityDate).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(7))

	created, err := repo.Create(context.Background(), inv)
	assert.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindMatured(t *testing.T) {
	repo, mock := NewMock(t)

	query := regexp.QuoteMeta(`SELECT id, user_id, plan, amount, rate, source_bucket, start_date, maturity_date, redeemed_at FROM investments WHERE maturity_date <= NOW() AND redeemed_at IS NULL ORDER BY maturity_date ASC LIMIT $1`)

	start := time.Now().AddDate(0, 0, -91)
	rows := pgxmock.NewRows([]string{"id", "user_id", "plan", "amount", "rate", "source_bucket", "start_date", "maturity_date", "redeemed_at"}).
		AddRow(7, 1, "gold", int64(500_00), 0.25, domain.BucketChecking, start, start.AddDate(0, 0, 90), nil)
	mock.ExpectQuery(query).WithArgs(1000).WillReturnRows(rows)

	matured, err := repo.FindMatured(context.Background(), 1000)
	assert.NoError(t, err)
	assert.Len(t, matured, 1)
	assert.Equal(t, "gold", matured[0].Plan)
	assert.Nil(t, matured[0].RedeemedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkRedeemed(t *testing.T) {
	repo, mock := NewMock(t)

	query := regexp.QuoteMeta(`UPDATE investments SET redeemed_at = NOW() WHERE id = $1 AND redeemed_at IS NULL`)

	t.Run("Redeems once", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(7).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.MarkRedeemed(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second redemption loses the guard", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(7).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkRedeemed(context.Background(), 7)
		assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := NewMock(t)

	query := regexp.QuoteMeta(`SELECT id, user_id, plan, amount, rate, source_bucket, start_date, maturity_date, redeemed_at FROM investments WHERE user_id = $1 ORDER BY start_date DESC`)
	mock.ExpectQuery(query).WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "plan", "amount", "rate", "source_bucket", "start_date", "maturity_date", "redeemed_at"}))

	investments, err := repo.ListByUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.Empty(t, investments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
