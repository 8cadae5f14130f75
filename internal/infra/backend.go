package infra

import (
	"fmt"

	"pharmapos/internal/config"
	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"
	"pharmapos/internal/store/redisstore"
	"pharmapos/internal/store/sqlstore"

	"github.com/rs/zerolog/log"
)

// NewBackend connects the record store selected by cfg.StoreDriver. The
// returned backend still has to be opened by the engine.
func NewBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New(), nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := NewDatabase(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db), nil
	case config.DriverRedis:
		rdb, err := NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return redisstore.New(rdb, cfg.RedisKeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
