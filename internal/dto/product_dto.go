package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string          `json:"name"           validate:"required,min=2,max=120"`
	Category      string          `json:"category"       validate:"max=60"`
	Price         decimal.Decimal `json:"price"          validate:"gte=0"`
	Cost          decimal.Decimal `json:"cost"           validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	MinimumStock  int             `json:"minimum_stock"  validate:"gte=0"`
	BatchNumber   *string         `json:"batch_number"   validate:"omitempty,max=64"`
	Manufacturer  *string         `json:"manufacturer"`
	ExpiryDate    *string         `json:"expiry_date"    validate:"omitempty,datetime=2006-01-02"`
	Description   *string         `json:"description"`
	// GenerateBarcode assigns an EAN-13 when BatchNumber is empty.
	GenerateBarcode bool `json:"generate_barcode"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Category     *string          `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Cost         *decimal.Decimal `json:"cost"`
	MinimumStock *int             `json:"minimum_stock" validate:"omitempty,gte=0"`
	BatchNumber  *string          `json:"batch_number"  validate:"omitempty,max=64"`
	Manufacturer *string          `json:"manufacturer"`
	ExpiryDate   *string          `json:"expiry_date"   validate:"omitempty,datetime=2006-01-02"`
	Description  *string          `json:"description"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductFilter struct {
	InStock  bool   `form:"in_stock"`
	Category string `form:"category"`
	Search   string `form:"q"`
	Limit    int    `form:"limit" validate:"gte=0,lte=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity int             `json:"stock_quantity"`
	MinimumStock  int             `json:"minimum_stock"`
	BatchNumber   *string         `json:"batch_number"`
	Manufacturer  *string         `json:"manufacturer"`
	ExpiryDate    *string         `json:"expiry_date"`
	Description   *string         `json:"description"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// CreateProductResponse reports whether an existing product with the same
// name was returned instead of creating a duplicate.
type CreateProductResponse struct {
	Product  ProductResponse `json:"product"`
	Existing bool            `json:"existing"`
}

type AlertResponse struct {
	Type      string `json:"type"` // low_stock | expired
	Priority  string `json:"priority"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}
