package service

import (
	"context"
	"testing"

	"pharmapos/internal/barcode"
	"pharmapos/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, f *fixture, name string, stock int, price int64) dto.ProductResponse {
	t.Helper()
	resp, err := f.products.Create(context.Background(), "u1", dto.CreateProductRequest{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return resp.Product
}

func TestProductCreate_ReturnsExistingOnDuplicateName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := createProduct(t, f, "Paracetamol", 100, 10)

	again, err := f.products.Create(ctx, "u1", dto.CreateProductRequest{Name: "  paracetamol ", Price: decimal.NewFromInt(99)})
	require.NoError(t, err)
	assert.True(t, again.Existing)
	assert.Equal(t, first.ID, again.Product.ID)
	assert.True(t, again.Product.Price.Equal(decimal.NewFromInt(10)))

	other, err := f.products.Create(ctx, "u2", dto.CreateProductRequest{Name: "Paracetamol", Price: decimal.NewFromInt(11)})
	require.NoError(t, err)
	assert.False(t, other.Existing, "names are scoped per user")
}

func TestProductCreate_GeneratesBarcode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resp, err := f.products.Create(ctx, "u1", dto.CreateProductRequest{
		Name: "Cetirizine", Price: decimal.NewFromInt(4), GenerateBarcode: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Product.BatchNumber)
	assert.True(t, barcode.ValidEAN13(*resp.Product.BatchNumber))

	found, err := f.products.FindByBarcode(ctx, "u1", *resp.Product.BatchNumber)
	require.NoError(t, err)
	assert.Equal(t, resp.Product.ID, found.ID)

	_, err = f.products.FindByBarcode(ctx, "u1", "0000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCreate_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(context.Background(), "u1", dto.CreateProductRequest{
		Name: "Zinc", Price: decimal.NewFromInt(-1),
	})
	assert.Error(t, err)
}

func TestProductList_InStockOrderedByName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createProduct(t, f, "Zinc", 5, 3)
	createProduct(t, f, "Amoxicillin", 0, 12)
	createProduct(t, f, "Metformin", 20, 7)

	all, err := f.products.List(ctx, "u1", dto.ProductFilter{})
	require.NoError(t, err)
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Amoxicillin", "Metformin", "Zinc"}, names)

	inStock, err := f.products.List(ctx, "u1", dto.ProductFilter{InStock: true})
	require.NoError(t, err)
	var stocks []int
	for _, p := range inStock {
		stocks = append(stocks, p.StockQuantity)
	}
	assert.ElementsMatch(t, []int{5, 20}, stocks)

	search, err := f.products.List(ctx, "u1", dto.ProductFilter{Search: "MET"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "Metformin", search[0].Name)
}

func TestProductUpdateRestockDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := createProduct(t, f, "Ibuprofen", 8, 4)

	updated, err := f.products.Update(ctx, "u1", p.ID, dto.UpdateProductRequest{
		Price:      ptr(decimal.RequireFromString("4.50")),
		ExpiryDate: ptr("2026-01-31"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, "2026-01-31", *updated.ExpiryDate)
	assert.Equal(t, "Ibuprofen", updated.Name)

	restocked, err := f.products.Restock(ctx, "u1", p.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 20, restocked.StockQuantity)

	_, err = f.products.Restock(ctx, "u1", p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.products.Update(ctx, "u2", p.ID, dto.UpdateProductRequest{Name: ptr("Stolen")})
	assert.ErrorIs(t, err, ErrNotFound, "other users cannot touch the product")

	require.NoError(t, f.products.Delete(ctx, "u1", p.ID))
	_, err = f.products.Get(ctx, "u1", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.products.Delete(ctx, "u1", p.ID), ErrNotFound)
}
