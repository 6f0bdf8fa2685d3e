package service

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/samirahpartel/kirtbank/internal/config"
	"github.com/samirahpartel/kirtbank/internal/pg"
	"github.com/samirahpartel/kirtbank/internal/repo"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mockDB.Close()

	repos := repo.New(mockDB)
	cfg := &config.Config{MinDeposit: 10}
	txManager := pg.NewMockTXManager(ctrl)

	services := New(cfg, repos, txManager, nil)

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.AccountService)
	assert.NotNil(t, services.DepositService)
	assert.NotNil(t, services.InvestService)
}
