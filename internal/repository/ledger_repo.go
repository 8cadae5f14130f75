package repository

import (
	"context"

	"pharmapos/internal/client"
	"pharmapos/internal/model"
	"pharmapos/internal/schema"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.PaymentHistory) error
	// ListByCustomer returns the ledger newest first.
	ListByCustomer(ctx context.Context, userID, customerID string) ([]model.PaymentHistory, error)
}

type paymentRepo struct{ db *client.Client }

func NewPaymentRepository(db *client.Client) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *model.PaymentHistory) error {
	rec, err := model.ToRecord(p)
	if err != nil {
		return err
	}
	created, err := one[model.PaymentHistory](r.db.From(schema.PaymentHistory).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *paymentRepo) ListByCustomer(ctx context.Context, userID, customerID string) ([]model.PaymentHistory, error) {
	return many[model.PaymentHistory](r.db.From(schema.PaymentHistory).Select("*").
		Eq("customer_id", customerID).Eq("user_id", userID).Order("created_at", queryDesc).Execute(ctx))
}

type LoanRepository interface {
	Create(ctx context.Context, l *model.CustomerLoan) error
	ListByCustomer(ctx context.Context, customerID string) ([]model.CustomerLoan, error)
}

type loanRepo struct{ db *client.Client }

func NewLoanRepository(db *client.Client) LoanRepository { return &loanRepo{db: db} }

func (r *loanRepo) Create(ctx context.Context, l *model.CustomerLoan) error {
	rec, err := model.ToRecord(l)
	if err != nil {
		return err
	}
	created, err := one[model.CustomerLoan](r.db.From(schema.CustomerLoans).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*l = *created
	return nil
}

func (r *loanRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.CustomerLoan, error) {
	return many[model.CustomerLoan](r.db.From(schema.CustomerLoans).Select("*").
		Eq("customer_id", customerID).Order("created_at", queryDesc).Execute(ctx))
}
