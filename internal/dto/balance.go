package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
)

type BalanceResponseDTO struct {
	Balance    decimal.Decimal `json:"balance" swaggertype:"number" example:"42.5"`
	TotalSpent decimal.Decimal `json:"total_spent" swaggertype:"number" example:"815"`
	Discount   int             `json:"discount" example:"10"`
}

type DepositRequestDTO struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"100"`
	Description string          `json:"description,omitempty" example:"Card top up"`
}

type TransactionDTO struct {
	ID            int64           `json:"id" example:"17"`
	Type          string          `json:"type" example:"purchase"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"number" example:"-25"`
	BalanceBefore decimal.Decimal `json:"balance_before" swaggertype:"number" example:"30"`
	BalanceAfter  decimal.Decimal `json:"balance_after" swaggertype:"number" example:"5"`
	PlacementID   *int            `json:"placement_id,omitempty" example:"3"`
	Description   string          `json:"description" example:"Purchase of link on https://blog.example"`
	CreatedAt     time.Time       `json:"created_at" example:"2026-01-10T09:00:00Z"`
}

func NewTransactionDTO(t domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		Type:          string(t.Kind),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		PlacementID:   t.PlacementID,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

type InvoiceRequestDTO struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number" example:"50"`
}

type InvoiceResponseDTO struct {
	InvoiceID string          `json:"invoice_id" example:"6f1c7c1e-8d1a-4c1e-9b53-1f0d3c0a2b11"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"number" example:"50"`
	Status    string          `json:"status" example:"pending"`
}

type WebhookRequestDTO struct {
	InvoiceID string `json:"invoice_id" example:"6f1c7c1e-8d1a-4c1e-9b53-1f0d3c0a2b11"`
}

type AdjustRequestDTO struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number" example:"-10"`
	Reason string          `json:"reason" example:"Chargeback"`
}
