package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmapos/internal/dto"
	"pharmapos/internal/infra"
	"pharmapos/internal/model"
	"pharmapos/internal/repository"
	"pharmapos/internal/settings"
	"pharmapos/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SaleService interface {
	Register(ctx context.Context, userID string, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, userID, id string) (*dto.SaleResponse, error)
	List(ctx context.Context, userID string, filter dto.SaleFilter) ([]dto.SaleResponse, error)
	ListByCustomer(ctx context.Context, userID, customerID string) ([]dto.SaleResponse, error)
	Receipt(ctx context.Context, userID, id string) (*infra.Receipt, error)
}

type saleService struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	loans     repository.LoanRepository
	settings  SettingsReader
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	loans repository.LoanRepository,
	settings SettingsReader,
) SaleService {
	return &saleService{sales: sales, products: products, customers: customers, loans: loans, settings: settings}
}

// line is a validated cart entry.
type line struct {
	product  *model.Product
	quantity int
	total    decimal.Decimal
}

// Register records a sale. Every write is its own transaction: the stock
// check happens up front, then the customer balance (debt sales), the
// sale, its items, the loan record and finally the stock decrements.
func (s *saleService) Register(ctx context.Context, userID string, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("a sale needs at least one item")
	}

	lines, err := s.resolveLines(ctx, userID, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.total)
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(subtotal) {
		return nil, ErrInvalidAmount
	}
	tax := subtotal.Mul(decimal.NewFromFloat(s.settings.System().TaxRate)).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Sub(req.Discount).Add(tax)

	var customer *model.Customer
	if req.PaymentMethod == model.PaymentDebt {
		customer, err = s.resolveCustomer(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		customer, err = s.customers.SetBalance(ctx, customer.ID, customer.OutstandingBalance.Add(total))
		if err != nil {
			return nil, fmt.Errorf("updating customer balance: %w", err)
		}
	} else if req.CustomerID != nil && *req.CustomerID != "" {
		customer, err = s.customers.FindByID(ctx, userID, *req.CustomerID)
		if err != nil {
			return nil, notFound(err)
		}
	}

	sale := &model.Sale{
		UserID:        userID,
		TotalAmount:   total,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
	}
	if err := model.Validate(sale); err != nil {
		return nil, err
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}

	items := make([]model.SaleItem, len(lines))
	for i, l := range lines {
		items[i] = model.SaleItem{
			SaleID:     sale.ID,
			ProductID:  l.product.ID,
			Quantity:   l.quantity,
			UnitPrice:  l.product.Price,
			TotalPrice: l.total,
		}
	}
	created, err := s.sales.CreateItems(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("creating sale items: %w", err)
	}

	if customer != nil && req.PaymentMethod == model.PaymentDebt {
		loan := &model.CustomerLoan{
			CustomerID:       customer.ID,
			SaleID:           &sale.ID,
			Amount:           total,
			RemainingBalance: total,
			Notes:            req.Notes,
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			log.Error().Err(err).Str("sale_id", sale.ID).Str("customer_id", customer.ID).Msg("loan record not written")
		}
	}

	for _, l := range lines {
		remaining := l.product.StockQuantity - l.quantity
		if _, err := s.products.Update(ctx, userID, l.product.ID, store.Record{"stock_quantity": remaining}); err != nil {
			return nil, fmt.Errorf("updating stock for %s: %w", l.product.Name, err)
		}
	}

	log.Info().
		Str("sale_id", sale.ID).
		Str("total", total.String()).
		Str("payment_method", sale.PaymentMethod).
		Int("items", len(created)).
		Msg("sale registered")

	resp := saleToResponse(sale, created, lines)
	resp.Subtotal = subtotal
	resp.Tax = tax
	return &resp, nil
}

// resolveLines loads each product once, merges repeated products and checks
// stock for the combined quantity.
func (s *saleService) resolveLines(ctx context.Context, userID string, items []dto.SaleItemRequest) ([]line, error) {
	var lines []line
	byID := map[string]int{}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidAmount
		}
		if i, ok := byID[it.ProductID]; ok {
			lines[i].quantity += it.Quantity
			continue
		}
		p, err := s.products.FindByID(ctx, userID, it.ProductID)
		if err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", it.ProductID, ErrNotFound)
			}
			return nil, err
		}
		byID[it.ProductID] = len(lines)
		lines = append(lines, line{product: p, quantity: it.Quantity})
	}
	for i := range lines {
		l := &lines[i]
		if l.product.StockQuantity < l.quantity {
			return nil, fmt.Errorf("%w: %s has %d, %d requested",
				ErrInsufficientStock, l.product.Name, l.product.StockQuantity, l.quantity)
		}
		l.total = l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity)))
	}
	return lines, nil
}

// resolveCustomer finds the debt sale's customer by id or by exact name,
// creating it with a zero balance when the name is new.
func (s *saleService) resolveCustomer(ctx context.Context, userID string, req dto.RegisterSaleRequest) (*model.Customer, error) {
	if req.CustomerID != nil && *req.CustomerID != "" {
		c, err := s.customers.FindByID(ctx, userID, *req.CustomerID)
		if err != nil {
			return nil, notFound(err)
		}
		return c, nil
	}
	if req.CustomerName == nil || strings.TrimSpace(*req.CustomerName) == "" {
		return nil, ErrCustomerRequired
	}
	name := strings.TrimSpace(*req.CustomerName)

	c, err := s.customers.FindByName(ctx, userID, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("looking up customer: %w", err)
	}
	c = &model.Customer{UserID: userID, Name: name, OutstandingBalance: decimal.Zero}
	if req.CustomerPhone != nil && strings.TrimSpace(*req.CustomerPhone) != "" {
		phone := strings.TrimSpace(*req.CustomerPhone)
		c.Phone = &phone
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	log.Info().Str("customer_id", c.ID).Str("name", name).Msg("customer created from debt sale")
	return c, nil
}

func (s *saleService) Get(ctx context.Context, userID, id string) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	items, err := s.sales.Items(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	resp := saleToResponse(sale, items, nil)
	s.fillNames(ctx, userID, &resp)
	return &resp, nil
}

func (s *saleService) List(ctx context.Context, userID string, filter dto.SaleFilter) ([]dto.SaleResponse, error) {
	sales, err := s.sales.List(ctx, userID, filter.From, filter.To, filter.Limit)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, sales)
}

func (s *saleService) ListByCustomer(ctx context.Context, userID, customerID string) ([]dto.SaleResponse, error) {
	sales, err := s.sales.ListByCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, sales)
}

func (s *saleService) withItems(ctx context.Context, sales []model.Sale) ([]dto.SaleResponse, error) {
	out := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		items, err := s.sales.Items(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		out[i] = saleToResponse(&sales[i], items, nil)
	}
	return out, nil
}

// Receipt assembles the printable receipt of a sale using the current
// pharmacy settings.
func (s *saleService) Receipt(ctx context.Context, userID, id string) (*infra.Receipt, error) {
	sale, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	pharmacy := s.settings.Pharmacy()
	r := &infra.Receipt{
		PharmacyName:   pharmacy.PharmacyName,
		Phone:          pharmacy.Phone,
		SaleID:         sale.ID,
		Date:           receiptDate(sale.CreatedAt),
		Subtotal:       sale.Subtotal,
		Discount:       sale.Discount,
		Tax:            sale.Tax,
		Total:          sale.TotalAmount,
		PaymentMethod:  sale.PaymentMethod,
		CurrencySymbol: settings.CurrencySymbol(pharmacy.Currency),
	}
	for _, it := range sale.Items {
		name := it.ProductName
		if name == "" {
			name = it.ProductID
		}
		r.Lines = append(r.Lines, infra.ReceiptLine{Name: name, Quantity: it.Quantity, Total: it.TotalPrice})
	}
	if sale.CustomerID != nil {
		if c, err := s.customers.FindByID(ctx, userID, *sale.CustomerID); err == nil {
			r.CustomerName = c.Name
		}
	}
	return r, nil
}

// fillNames resolves product names for display. Products deleted since the
// sale keep an empty name.
func (s *saleService) fillNames(ctx context.Context, userID string, resp *dto.SaleResponse) {
	for i := range resp.Items {
		if p, err := s.products.FindByID(ctx, userID, resp.Items[i].ProductID); err == nil {
			resp.Items[i].ProductName = p.Name
		}
	}
}

// saleToResponse derives subtotal and tax from the stored items, since a
// sale only persists its total and discount.
func saleToResponse(sale *model.Sale, items []model.SaleItem, lines []line) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:            sale.ID,
		CustomerID:    sale.CustomerID,
		Discount:      sale.Discount,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
		Items:         make([]dto.SaleItemResponse, len(items)),
	}
	subtotal := decimal.Zero
	for i, it := range items {
		resp.Items[i] = dto.SaleItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
		if i < len(lines) {
			resp.Items[i].ProductName = lines[i].product.Name
		}
		subtotal = subtotal.Add(it.TotalPrice)
	}
	resp.Subtotal = subtotal
	resp.Tax = sale.TotalAmount.Sub(subtotal.Sub(sale.Discount))
	return resp
}

func receiptDate(stamp string) string {
	t, err := time.Parse(store.TimestampLayout, stamp)
	if err != nil {
		return stamp
	}
	return t.Format("02/01/2006 15:04")
}
