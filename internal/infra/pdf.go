package infra

// pdf.go renders sale receipts with go-pdf/fpdf on 74x105mm thermal-style
// paper: pharmacy header, sale reference and date, item lines, discount and
// tax, bold total, payment method.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one printed item.
type ReceiptLine struct {
	Name     string
	Quantity int
	Total    decimal.Decimal
}

// Receipt is everything printed on a sale receipt. Amounts are formatted
// with CurrencySymbol as a prefix.
type Receipt struct {
	PharmacyName   string
	Phone          string
	SaleID         string
	Date           string
	Lines          []ReceiptLine
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  string
	CustomerName   string
	CurrencySymbol string
}

// GenerateReceiptPDF writes the receipt to storagePath/receipt_{sale id}.pdf,
// creating the directory if needed, and returns the file path.
func GenerateReceiptPDF(r Receipt, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, "receipt_"+r.SaleID+".pdf")

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := WriteReceiptPDF(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: close file: %w", err)
	}
	return filePath, nil
}

// WriteReceiptPDF renders the receipt into w.
func WriteReceiptPDF(w io.Writer, r Receipt) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return tr(r.CurrencySymbol + d.StringFixed(2)) }

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	name := r.PharmacyName
	if name == "" {
		name = "Pharmacy"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 6, tr(name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if r.Phone != "" {
		pdf.CellFormat(contentW, 4, tr(r.Phone), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, tr("Sale "+r.SaleID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.Date, "", 1, "L", false, 0, "")
	if r.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Customer: "+r.CustomerName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, line := range r.Lines {
		itemName := line.Name
		if len(itemName) > 22 {
			itemName = itemName[:21] + "."
		}
		pdf.CellFormat(col1, 5, tr(itemName), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(line.Total), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, money(r.Subtotal), "", 1, "R", false, 0, "")
	if !r.Discount.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "-"+money(r.Discount), "", 1, "R", false, 0, "")
	}
	if !r.Tax.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Tax:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, money(r.Tax), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, money(r.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Paid by "+r.PaymentMethod, "", 1, "L", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}
