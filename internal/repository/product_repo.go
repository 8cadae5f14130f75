package repository

import (
	"context"
	"strings"

	"pharmapos/internal/client"
	"pharmapos/internal/model"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"
)

// ProductListOptions narrows List.
type ProductListOptions struct {
	InStockOnly bool
	Category    string
	Search      string
	Limit       int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, userID, id string) (*model.Product, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, userID, name string) (*model.Product, error)
	FindByBarcode(ctx context.Context, userID, barcode string) (*model.Product, error)
	List(ctx context.Context, userID string, opts ProductListOptions) ([]model.Product, error)
	ListBelowStock(ctx context.Context, userID string, threshold int) ([]model.Product, error)
	ListExpiredBy(ctx context.Context, userID, date string) ([]model.Product, error)
	Update(ctx context.Context, userID, id string, patch store.Record) (*model.Product, error)
	Delete(ctx context.Context, userID, id string) error
}

type productRepo struct{ db *client.Client }

func NewProductRepository(db *client.Client) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	rec, err := model.ToRecord(p)
	if err != nil {
		return err
	}
	created, err := one[model.Product](r.db.From(schema.Products).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, userID, id string) (*model.Product, error) {
	return one[model.Product](r.db.From(schema.Products).Select("*").
		Eq("id", id).Eq("user_id", userID).Single().Execute(ctx))
}

func (r *productRepo) FindByName(ctx context.Context, userID, name string) (*model.Product, error) {
	all, err := many[model.Product](r.db.From(schema.Products).Select("*").
		Eq("user_id", userID).Order("created_at").Execute(ctx))
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for i := range all {
		if strings.EqualFold(strings.TrimSpace(all[i].Name), name) {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *productRepo) FindByBarcode(ctx context.Context, userID, barcode string) (*model.Product, error) {
	return one[model.Product](r.db.From(schema.Products).Select("*").
		Eq("user_id", userID).Eq("batch_number", barcode).Single().Execute(ctx))
}

func (r *productRepo) List(ctx context.Context, userID string, opts ProductListOptions) ([]model.Product, error) {
	q := r.db.From(schema.Products).Select("*").Eq("user_id", userID)
	if opts.InStockOnly {
		q = q.Gt("stock_quantity", 0)
	}
	if opts.Category != "" {
		q = q.Eq("category", opts.Category)
	}
	q = q.Order("name")
	if opts.Search == "" && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	products, err := many[model.Product](q.Execute(ctx))
	if err != nil || opts.Search == "" {
		return products, err
	}

	// the store has no LIKE; substring search runs here
	needle := strings.ToLower(opts.Search)
	out := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *productRepo) ListBelowStock(ctx context.Context, userID string, threshold int) ([]model.Product, error) {
	return many[model.Product](r.db.From(schema.Products).Select("*").
		Eq("user_id", userID).Lt("stock_quantity", threshold).Order("stock_quantity").Execute(ctx))
}

func (r *productRepo) ListExpiredBy(ctx context.Context, userID, date string) ([]model.Product, error) {
	return many[model.Product](r.db.From(schema.Products).Select("*").
		Eq("user_id", userID).Lte("expiry_date", date).Order("expiry_date").Execute(ctx))
}

func (r *productRepo) Update(ctx context.Context, userID, id string, patch store.Record) (*model.Product, error) {
	return one[model.Product](r.db.From(schema.Products).Update(patch).
		Eq("id", id).Eq("user_id", userID).Select("*").Single().Execute(ctx))
}

func (r *productRepo) Delete(ctx context.Context, userID, id string) error {
	return r.db.From(schema.Products).Delete().Eq("id", id).Eq("user_id", userID).Execute(ctx).Err()
}
