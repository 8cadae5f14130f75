package model

import "github.com/shopspring/decimal"

// Payment methods.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentDebt = "debt"
)

// Sale is immutable once written.
type Sale struct {
	ID            string          `json:"id,omitempty"`
	UserID        string          `json:"user_id" validate:"required"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount" validate:"gte=0"`
	Discount      decimal.Decimal `json:"discount" validate:"gte=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card debt"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// SaleItem is one line of a sale, written in a batch with it.
type SaleItem struct {
	ID         string          `json:"id,omitempty"`
	SaleID     string          `json:"sale_id" validate:"required"`
	ProductID  string          `json:"product_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"gte=0"`
	TotalPrice decimal.Decimal `json:"total_price" validate:"gte=0"`
}
