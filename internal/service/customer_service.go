package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmapos/internal/dto"
	"pharmapos/internal/model"
	"pharmapos/internal/repository"
	"pharmapos/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CustomerService interface {
	Create(ctx context.Context, userID string, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, userID, id string) (*dto.CustomerResponse, error)
	List(ctx context.Context, userID string) ([]dto.CustomerResponse, error)
	// RecordPayment lowers the balance by amount, never below zero, and
	// logs a positive history entry.
	RecordPayment(ctx context.Context, userID, id string, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error)
	// RecordDebt raises the balance by amount and logs a negative history
	// entry.
	RecordDebt(ctx context.Context, userID, id string, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error)
	History(ctx context.Context, userID, id string) ([]dto.PaymentHistoryResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type customerService struct {
	customers repository.CustomerRepository
	payments  repository.PaymentRepository
	now       func() time.Time
}

func NewCustomerService(customers repository.CustomerRepository, payments repository.PaymentRepository) CustomerService {
	return &customerService{customers: customers, payments: payments, now: time.Now}
}

func (s *customerService) Create(ctx context.Context, userID string, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		UserID:             userID,
		Name:               strings.TrimSpace(req.Name),
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		OutstandingBalance: decimal.Zero,
	}
	if err := model.Validate(c); err != nil {
		return nil, err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, userID, id string) (*dto.CustomerResponse, error) {
	c, err := s.customers.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, userID string) ([]dto.CustomerResponse, error) {
	cs, err := s.customers.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, len(cs))
	for i := range cs {
		out[i] = customerToResponse(&cs[i])
	}
	return out, nil
}

func (s *customerService) RecordPayment(ctx context.Context, userID, id string, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error) {
	return s.post(ctx, userID, id, req, true, func(balance decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		return decimal.Max(decimal.Zero, balance.Sub(req.Amount)), req.Amount
	})
}

func (s *customerService) RecordDebt(ctx context.Context, userID, id string, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error) {
	return s.post(ctx, userID, id, req, false, func(balance decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		return balance.Add(req.Amount), req.Amount.Neg()
	})
}

// post applies one ledger movement: apply returns the new balance and the
// signed history amount. The balance write and the history insert are two
// separate transactions. Without historyRequired a failed history insert is
// logged and the response carries no entry.
func (s *customerService) post(ctx context.Context, userID, id string, req dto.LedgerEntryRequest, historyRequired bool,
	apply func(balance decimal.Decimal) (decimal.Decimal, decimal.Decimal)) (*dto.LedgerResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	c, err := s.customers.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}

	balance, signed := apply(c.OutstandingBalance)
	updated, err := s.customers.SetBalance(ctx, c.ID, balance)
	if err != nil {
		return nil, fmt.Errorf("updating balance: %w", err)
	}

	entry := &model.PaymentHistory{
		CustomerID:  c.ID,
		UserID:      userID,
		Amount:      signed,
		Notes:       req.Notes,
		PaymentDate: s.now().UTC().Format(store.TimestampLayout),
	}
	resp := &dto.LedgerResponse{Customer: customerToResponse(updated)}
	if err := s.payments.Create(ctx, entry); err != nil {
		if historyRequired {
			return nil, fmt.Errorf("recording history: %w", err)
		}
		log.Error().Err(err).Str("customer_id", c.ID).Msg("failed to record ledger history; balance already updated")
	} else {
		h := historyToResponse(entry)
		resp.Entry = &h
	}
	log.Info().
		Str("customer_id", c.ID).
		Str("amount", signed.String()).
		Str("balance", updated.OutstandingBalance.String()).
		Msg("customer ledger updated")

	return resp, nil
}

func (s *customerService) History(ctx context.Context, userID, id string) ([]dto.PaymentHistoryResponse, error) {
	if _, err := s.customers.FindByID(ctx, userID, id); err != nil {
		return nil, notFound(err)
	}
	hs, err := s.payments.ListByCustomer(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentHistoryResponse, len(hs))
	for i := range hs {
		out[i] = historyToResponse(&hs[i])
	}
	return out, nil
}

// Delete removes the customer together with its sales, sale items, loans
// and payment history.
func (s *customerService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.customers.FindByID(ctx, userID, id); err != nil {
		return notFound(err)
	}
	n, err := s.customers.DeleteWithHistory(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	log.Info().Str("customer_id", id).Int("records", n).Msg("customer deleted")
	return nil
}
