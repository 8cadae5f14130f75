package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pharmapos/internal/client"
	"pharmapos/internal/repository"
	"pharmapos/internal/schema"
	"pharmapos/internal/settings"
	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db        *client.Client
	settings  *settings.Store
	products  ProductService
	sales     SaleService
	customers CustomerService
	alerts    *notificationService
	auth      *authService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tick := fixedNow
	clock := func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	eng := store.NewEngine(memstore.New(), schema.Default(), store.WithClock(clock))
	require.NoError(t, eng.Open(context.Background()))
	t.Cleanup(func() { _ = eng.Close() })
	db := client.New(eng)

	st, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	cs := NewCustomerService(customerRepo, paymentRepo).(*customerService)
	cs.now = clock

	ns := NewNotificationService(productRepo, st).(*notificationService)
	ns.now = func() time.Time { return fixedNow }

	as := NewAuthService(repository.NewAccountRepository(db), "test-secret", 24).(*authService)
	as.cost = 4
	as.now = func() time.Time { return fixedNow }

	return &fixture{
		db:       db,
		settings: st,
		products: NewProductService(productRepo, nil),
		sales: NewSaleService(
			repository.NewSaleRepository(db), productRepo, customerRepo,
			repository.NewLoanRepository(db), st,
		),
		customers: cs,
		alerts:    ns,
		auth:      as,
	}
}

func ptr[T any](v T) *T { return &v }
