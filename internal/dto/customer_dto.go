package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name    string  `json:"name"    validate:"required,min=1,max=120"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"   validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// LedgerEntryRequest is used for both payments and manually recorded debt.
type LedgerEntryRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Notes  *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              *string         `json:"email"`
	Phone              *string         `json:"phone"`
	Address            *string         `json:"address"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

type PaymentHistoryResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       *string         `json:"notes"`
	PaymentDate string          `json:"payment_date"`
	CreatedAt   string          `json:"created_at"`
}

// LedgerResponse is returned after a payment or a debt entry.
type LedgerResponse struct {
	Customer CustomerResponse       `json:"customer"`
	Entry    *PaymentHistoryResponse `json:"entry"`
}
