package repository

import (
	"context"
	"strings"

	"pharmapos/internal/client"
	"pharmapos/internal/model"
	"pharmapos/internal/schema"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

type accountRepo struct{ db *client.Client }

func NewAccountRepository(db *client.Client) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) Create(ctx context.Context, a *model.Account) error {
	a.Email = normalizeEmail(a.Email)
	rec, err := model.ToRecord(a)
	if err != nil {
		return err
	}
	created, err := one[model.Account](r.db.From(schema.Accounts).Insert(rec).Select("*").Single().Execute(ctx))
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return one[model.Account](r.db.From(schema.Accounts).Select("*").
		Eq("email", normalizeEmail(email)).Single().Execute(ctx))
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return one[model.Account](r.db.From(schema.Accounts).Select("*").Eq("id", id).Single().Execute(ctx))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
