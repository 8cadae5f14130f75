package model

import "github.com/shopspring/decimal"

// Customer carries a running credit ledger. A payment never takes
// OutstandingBalance below zero; debt increases it without bound.
type Customer struct {
	ID                 string          `json:"id,omitempty"`
	UserID             string          `json:"user_id" validate:"required"`
	Name               string          `json:"name" validate:"required,max=120"`
	Email              *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string         `json:"phone,omitempty"`
	Address            *string         `json:"address,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	CreatedAt          string          `json:"created_at,omitempty"`
	UpdatedAt          string          `json:"updated_at,omitempty"`
}

// PaymentHistory is one ledger movement: positive amounts are payments
// received, negative amounts are recorded debt.
type PaymentHistory struct {
	ID          string          `json:"id,omitempty"`
	CustomerID  string          `json:"customer_id" validate:"required"`
	UserID      string          `json:"user_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	PaymentDate string          `json:"payment_date,omitempty"`
}

// CustomerLoan links a debt sale to its customer. It is informational and
// not kept consistent with the customer balance.
type CustomerLoan struct {
	ID               string          `json:"id,omitempty"`
	CustomerID       string          `json:"customer_id" validate:"required"`
	SaleID           *string         `json:"sale_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
}
