package service

import (
	"context"
	"testing"

	"pharmapos/internal/dto"
	"pharmapos/internal/settings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createProduct(t, f, "Plenty", 50, 1)
	createProduct(t, f, "Running low", 7, 1)
	createProduct(t, f, "Almost gone", 2, 1)
	for _, p := range []struct{ name, expiry string }{
		{"Expired yesterday", "2025-03-13"},
		{"Expires today", "2025-03-14"},
		{"Fresh", "2026-01-01"},
	} {
		_, err := f.products.Create(ctx, "u1", dto.CreateProductRequest{
			Name: p.name, Price: decimal.NewFromInt(1), StockQuantity: 40, ExpiryDate: ptr(p.expiry),
		})
		require.NoError(t, err)
	}

	alerts, err := f.alerts.Alerts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, alerts, 4)

	assert.Equal(t, AlertLowStock, alerts[0].Type)
	assert.Equal(t, PriorityHigh, alerts[0].Priority)
	assert.Contains(t, alerts[0].Message, "Almost gone")
	assert.Equal(t, PriorityMedium, alerts[1].Priority)
	assert.Contains(t, alerts[1].Message, "Running low")

	for _, a := range alerts[2:] {
		assert.Equal(t, AlertExpired, a.Type)
		assert.Equal(t, PriorityHigh, a.Priority)
	}
	assert.Contains(t, alerts[2].Message, "Expired yesterday")

	_, err = f.settings.SaveSystem(settings.SystemPatch{Notifications: ptr(false)})
	require.NoError(t, err)
	alerts, err = f.alerts.Alerts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlerts_ThresholdFromSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	createProduct(t, f, "Seven", 7, 1)

	_, err := f.settings.SaveSystem(settings.SystemPatch{LowStockThreshold: ptr(5)})
	require.NoError(t, err)
	alerts, err := f.alerts.Alerts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
