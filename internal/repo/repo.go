package repo

import (
	"github.com/samirahpartel/kirtbank/internal/pg"
	accountrepo "github.com/samirahpartel/kirtbank/internal/repo/account-repo"
	alertrepo "github.com/samirahpartel/kirtbank/internal/repo/alert-repo"
	investmentrepo "github.com/samirahpartel/kirtbank/internal/repo/investment-repo"
	transactionrepo "github.com/samirahpartel/kirtbank/internal/repo/transaction-repo"
	userrepo "github.com/samirahpartel/kirtbank/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	AccountRepo     *accountrepo.Repository
	TransactionRepo *transactionrepo.Repository
	InvestmentRepo  *investmentrepo.Repository
	AlertRepo       *alertrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		AccountRepo:     accountrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		InvestmentRepo:  investmentrepo.New(conn),
		AlertRepo:       alertrepo.New(conn),
	}
}
