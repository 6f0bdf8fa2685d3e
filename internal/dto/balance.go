package dto

import (
	"github.com/shopspring/decimal"

	"github.com/samirahpartel/kirtbank/internal/domain"
)

type BalanceResponseDTO struct {
	Checking float64 `json:"checking" example:"500.5"`
	Savings  float64 `json:"savings" example:"1200"`
	USDT     float64 `json:"usdt" example:"42"`
	Total    float64 `json:"total" example:"1742.5"`
}

type SetBalancesRequestDTO struct {
	Checking decimal.Decimal `json:"checking" example:"500.50"`
	Savings  decimal.Decimal `json:"savings" example:"1200.00"`
	USDT     decimal.Decimal `json:"usdt" example:"42.00"`
}

func NewBalanceResponse(b *domain.Balance) BalanceResponseDTO {
	return BalanceResponseDTO{
		Checking: domain.CentsToFloat(b.Checking),
		Savings:  domain.CentsToFloat(b.Savings),
		USDT:     domain.CentsToFloat(b.USDT),
		Total:    domain.CentsToFloat(b.Total()),
	}
}
