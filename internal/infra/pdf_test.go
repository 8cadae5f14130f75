package infra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() Receipt {
	return Receipt{
		PharmacyName:   "Green Cross",
		SaleID:         "sales_1742000000000_0a1b2c3d4",
		Date:           "14/03/2025 09:30",
		Lines:          []ReceiptLine{{Name: "Paracetamol 500mg tablets, box of twenty", Quantity: 3, Total: decimal.NewFromInt(30)}},
		Subtotal:       decimal.NewFromInt(30),
		Discount:       decimal.NewFromInt(5),
		Tax:            decimal.RequireFromString("1.50"),
		Total:          decimal.RequireFromString("26.50"),
		PaymentMethod:  "cash",
		CurrencySymbol: "€",
	}
}

func TestWriteReceiptPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReceiptPDF(&buf, sampleReceipt()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerateReceiptPDF_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	r := sampleReceipt()

	path, err := GenerateReceiptPDF(r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_"+r.SaleID+".pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
