package alertrepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
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

	txID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO alerts (kind, tx_id, user_id, details) VALUES ($1, $2, $3, $4) RETURNING id, created_at`)).
		WithArgs("settlement_inconsistency", txID, 1, "commit outcome unknown").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	alert, err := repo.Create(context.Background(), &domain.Alert{
		Kind:    "settlement_inconsistency",
		TxID:    txID,
		UserID:  1,
		Details: "commit outcome unknown",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), alert.ID)
	assert.Equal(t, now, alert.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRecent(t *testing.T) {
	repo, mock := NewMock(t)

	txID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "kind", "tx_id", "user_id", "details", "created_at"}).
		AddRow(int64(3), "settlement_inconsistency", txID, 1, "commit outcome unknown", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, kind, tx_id, user_id, details, created_at FROM alerts ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(rows)

	alerts, err := repo.ListRecent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, txID, alerts[0].TxID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
