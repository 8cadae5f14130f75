package repository

import (
	"context"

	"pharmapos/internal/client"
	"pharmapos/internal/model"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"

	"github.com/shopspring/decimal"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, userID, id string) (*model.Customer, error)
	FindByName(ctx context.Context, userID, name string) (*model.Customer, error)
	List(ctx context.Context, userID string) ([]model.Customer, error)
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*model.Customer, error)
	// DeleteWithHistory removes the customer with its sales, sale items,
	// loans and payment history.
	DeleteWithHistory(ctx context.Context, userID, id string) (int, error)
}

type customerRepo struct{ db *client.Client }

func NewCustomerRepository(db *client.Client) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	rec, err := model.ToRecord(c)
	if err != nil {
		return err
	}
	created, err := one[model.Customer](r.db.From(schema.Customers).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (r *customerRepo) FindByID(ctx context.Context, userID, id string) (*model.Customer, error) {
	return one[model.Customer](r.db.From(schema.Customers).Select("*").
		Eq("id", id).Eq("user_id", userID).Single().Execute(ctx))
}

func (r *customerRepo) FindByName(ctx context.Context, userID, name string) (*model.Customer, error) {
	return one[model.Customer](r.db.From(schema.Customers).Select("*").
		Eq("user_id", userID).Eq("name", name).Order("created_at").Single().Execute(ctx))
}

func (r *customerRepo) List(ctx context.Context, userID string) ([]model.Customer, error) {
	return many[model.Customer](r.db.From(schema.Customers).Select("*").
		Eq("user_id", userID).Order("name").Execute(ctx))
}

func (r *customerRepo) SetBalance(ctx context.Context, id string, balance decimal.Decimal) (*model.Customer, error) {
	return one[model.Customer](r.db.From(schema.Customers).
		Update(store.Record{"outstanding_balance": balance}).
		Eq("id", id).Select("*").Single().Execute(ctx))
}

func (r *customerRepo) DeleteWithHistory(ctx context.Context, userID, id string) (int, error) {
	return r.db.DeleteCascade(ctx, schema.Customers, store.Where("id", id, "user_id", userID))
}
