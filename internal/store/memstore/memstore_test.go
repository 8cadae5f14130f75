package memstore_test

import (
	"testing"

	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"
	"pharmapos/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Backend { return memstore.New() })
}
