package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samirahpartel/kirtbank/internal/domain"
)

type OpenInvestmentRequestDTO struct {
	Plan    string          `json:"plan" validate:"required" example:"gold"`
	Amount  decimal.Decimal `json:"amount" validate:"required" example:"500.00"`
	Account string          `json:"account" example:"checking"`
}

type InvestmentResponseDTO struct {
	ID             int       `json:"id" example:"7"`
	Plan           string    `json:"plan" example:"gold"`
	Amount         float64   `json:"amount" example:"500"`
	Rate           float64   `json:"rate" example:"0.25"`
	SourceBucket   string    `json:"source_bucket" example:"checking"`
	StartDate      time.Time `json:"start_date"`
	MaturityDate   time.Time `json:"maturity_date"`
	Progress       float64   `json:"progress" example:"0.43"`
	ExpectedProfit float64   `json:"expected_profit" example:"125"`
	Redeemed       bool      `json:"redeemed" example:"false"`
}

type PlanResponseDTO struct {
	Name string  `json:"name" example:"gold"`
	Rate float64 `json:"rate" example:"0.25"`
	Term string  `json:"term" example:"3 months"`
	Days int     `json:"days" example:"90"`
	Min  float64 `json:"min" example:"100"`
	Max  float64 `json:"max" example:"1000"`
}

func NewPlanListResponse(plans []domain.InvestmentPlan) []PlanResponseDTO {
	out := make([]PlanResponseDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanResponseDTO{
			Name: p.Name,
			Rate: p.Rate,
			Term: p.Term,
			Days: p.Days,
			Min:  domain.CentsToFloat(p.Min),
			Max:  domain.CentsToFloat(p.Max),
		})
	}
	return out
}
