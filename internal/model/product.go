package model

import "github.com/shopspring/decimal"

// Product is a catalogue entry. BatchNumber doubles as the barcode value.
// ExpiryDate is a calendar date, YYYY-MM-DD.
type Product struct {
	ID            string          `json:"id,omitempty"`
	UserID        string          `json:"user_id" validate:"required"`
	Name          string          `json:"name" validate:"required,max=120"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	Cost          decimal.Decimal `json:"cost" validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity"`
	MinimumStock  int             `json:"minimum_stock" validate:"gte=0"`
	BatchNumber   *string         `json:"batch_number,omitempty"`
	Manufacturer  *string         `json:"manufacturer,omitempty"`
	ExpiryDate    *string         `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Description   *string         `json:"description,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

