//go:build integration

package sqlstore_test

// Run with: go test -tags integration ./internal/store/...

import (
	"context"
	"testing"

	"pharmapos/internal/infra"
	"pharmapos/internal/store"
	"pharmapos/internal/store/sqlstore"
	"pharmapos/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func TestConformance_Postgres(t *testing.T) {
	ctx := context.Background()
	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("pharmacy_test"),
		tcPostgres.WithUsername("pharmacy"),
		tcPostgres.WithPassword("pharmacy"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) store.Backend {
		db, err := infra.NewDatabase("postgres", dsn)
		require.NoError(t, err)
		require.NoError(t, truncate(db))
		return sqlstore.New(db)
	})
}

func truncate(db *gorm.DB) error {
	if !db.Migrator().HasTable("documents") {
		return nil
	}
	return db.Exec("TRUNCATE documents, document_indexes").Error
}
