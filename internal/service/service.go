package service

import (
	"github.com/samirahpartel/kirtbank/internal/handlers/auth"
	"github.com/samirahpartel/kirtbank/internal/handlers/balance"
	"github.com/samirahpartel/kirtbank/internal/handlers/investments"
	"github.com/samirahpartel/kirtbank/internal/handlers/transactions"

	pkgauth "github.com/samirahpartel/kirtbank/pkg/auth"

	"github.com/samirahpartel/kirtbank/internal/config"
	"github.com/samirahpartel/kirtbank/internal/pg"
	"github.com/samirahpartel/kirtbank/internal/repo"
	"github.com/samirahpartel/kirtbank/internal/service/accountservice"
	"github.com/samirahpartel/kirtbank/internal/service/authservice"
	"github.com/samirahpartel/kirtbank/internal/service/depositservice"
	"github.com/samirahpartel/kirtbank/internal/service/investservice"
)

type Services struct {
	AuthService    auth.Service
	AccountService balance.Service
	DepositService transactions.Service
	InvestService  investments.Service
}

func New(cfg *config.Config, repo *repo.Repositories, txManager pg.TXManager, notifier depositservice.Notifier) *Services {
	accountService := accountservice.New(repo.AccountRepo, repo.TransactionRepo, txManager)
	depositService := depositservice.New(repo.TransactionRepo, repo.AccountRepo, repo.AlertRepo, txManager, notifier, cfg.MinDepositCents())
	investService := investservice.New(repo.InvestmentRepo, repo.AccountRepo, repo.TransactionRepo, txManager)
	authService := authservice.New(repo.UserRepo, accountService, txManager, &pkgauth.HashService{}, &pkgauth.JWTService{})

	return &Services{
		AuthService:    authService,
		AccountService: accountService,
		DepositService: depositService,
		InvestService:  investService,
	}
}
