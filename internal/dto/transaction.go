package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samirahpartel/kirtbank/internal/domain"
)

type DepositRequestDTO struct {
	Amount     decimal.Decimal `json:"amount" validate:"required" example:"150.00"`
	Method     string          `json:"method" validate:"required" example:"bank-transfer"`
	Account    string          `json:"account" example:"checking"`
	ReceiptRef string          `json:"receipt_ref,omitempty" example:"wire-20260831-001"`
}

type ResolveRequestDTO struct {
	Decision string `json:"decision" validate:"required,oneof=confirm reject" example:"confirm"`
}

type BackfillRequestDTO struct {
	Type    string          `json:"type" validate:"required" example:"deposit"`
	Amount  decimal.Decimal `json:"amount" validate:"required" example:"75.50"`
	Method  string          `json:"method" example:"bank-transfer"`
	Account string          `json:"account" example:"savings"`
	Status  string          `json:"status" validate:"required" example:"Completed"`
	Date    time.Time       `json:"date" example:"2026-01-15T10:00:00Z"`
}

type TransactionResponseDTO struct {
	ID         string    `json:"id" example:"7d9f1a30-52ce-4af3-9e8b-1f0f3f6a2b11"`
	UserID     int       `json:"user_id" example:"42"`
	Type       string    `json:"type" example:"deposit"`
	Amount     float64   `json:"amount" example:"150"`
	Method     string    `json:"method" example:"bank-transfer"`
	Account    string    `json:"account" example:"checking"`
	Status     string    `json:"status" example:"Pending"`
	ReceiptRef string    `json:"receipt_ref,omitempty"`
	Date       time.Time `json:"date" example:"2026-08-31T16:09:57+03:00"`
}

func NewTransactionResponse(tx *domain.Transaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:         tx.ID.String(),
		UserID:     tx.UserID,
		Type:       tx.Type,
		Amount:     domain.CentsToFloat(tx.Amount),
		Method:     tx.Method,
		Account:    tx.Account,
		Status:     tx.Status,
		ReceiptRef: tx.ReceiptRef,
		Date:       tx.Date,
	}
}

func NewTransactionListResponse(txs []domain.Transaction) []TransactionResponseDTO {
	out := make([]TransactionResponseDTO, 0, len(txs))
	for i := range txs {
		out = append(out, NewTransactionResponse(&txs[i]))
	}
	return out
}
