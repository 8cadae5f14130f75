package repository

import (
	"context"

	"pharmapos/internal/client"
	"pharmapos/internal/model"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"
)

type SaleRepository interface {
	Create(ctx context.Context, s *model.Sale) error
	CreateItems(ctx context.Context, items []model.SaleItem) ([]model.SaleItem, error)
	FindByID(ctx context.Context, userID, id string) (*model.Sale, error)
	Items(ctx context.Context, saleID string) ([]model.SaleItem, error)
	List(ctx context.Context, userID string, from, to string, limit int) ([]model.Sale, error)
	ListByCustomer(ctx context.Context, userID, customerID string) ([]model.Sale, error)
}

type saleRepo struct{ db *client.Client }

func NewSaleRepository(db *client.Client) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) Create(ctx context.Context, s *model.Sale) error {
	rec, err := model.ToRecord(s)
	if err != nil {
		return err
	}
	created, err := one[model.Sale](r.db.From(schema.Sales).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

func (r *saleRepo) CreateItems(ctx context.Context, items []model.SaleItem) ([]model.SaleItem, error) {
	recs := make([]store.Record, 0, len(items))
	for i := range items {
		rec, err := model.ToRecord(items[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return many[model.SaleItem](r.db.From(schema.SaleItems).Insert(recs...).Select("*").Execute(ctx))
}

func (r *saleRepo) FindByID(ctx context.Context, userID, id string) (*model.Sale, error) {
	return one[model.Sale](r.db.From(schema.Sales).Select("*").
		Eq("id", id).Eq("user_id", userID).Single().Execute(ctx))
}

func (r *saleRepo) Items(ctx context.Context, saleID string) ([]model.SaleItem, error) {
	return many[model.SaleItem](r.db.From(schema.SaleItems).Select("*").
		Eq("sale_id", saleID).Order("id").Execute(ctx))
}

// List returns sales newest first. from and to are optional ISO timestamps
// bounding created_at inclusively.
func (r *saleRepo) List(ctx context.Context, userID string, from, to string, limit int) ([]model.Sale, error) {
	q := r.db.From(schema.Sales).Select("*").Eq("user_id", userID)
	if from != "" {
		q = q.Gte("created_at", from)
	}
	if to != "" {
		q = q.Lte("created_at", to)
	}
	q = q.Order("created_at", queryDesc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return many[model.Sale](q.Execute(ctx))
}

func (r *saleRepo) ListByCustomer(ctx context.Context, userID, customerID string) ([]model.Sale, error) {
	return many[model.Sale](r.db.From(schema.Sales).Select("*").
		Eq("user_id", userID).Eq("customer_id", customerID).Order("created_at", queryDesc).Execute(ctx))
}
