package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type RegisterSaleRequest struct {
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	Discount      decimal.Decimal   `json:"discount"       validate:"gte=0"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card debt"`
	CustomerID    *string           `json:"customer_id"`
	// CustomerName resolves or creates the customer of a debt sale inline.
	CustomerName  *string `json:"customer_name"  validate:"omitempty,max=120"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,max=30"`
	Notes         *string `json:"notes"`
}

type SaleFilter struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit,default=50" validate:"gte=0,lte=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    *string            `json:"customer_id"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Notes         *string            `json:"notes"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}
