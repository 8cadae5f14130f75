package settings

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestDefaults(t *testing.T) {
	s, _ := openTemp(t)
	assert.Equal(t, Pharmacy{Currency: "PKR"}, s.Pharmacy())
	assert.Equal(t, System{
		Currency:          "PKR",
		Notifications:     true,
		LowStockThreshold: 10,
		AutoBackup:        true,
	}, s.System())
}

func TestSavePharmacy_MirrorsIntoSystemAndPersists(t *testing.T) {
	s, path := openTemp(t)
	name, cur, tax := "Al-Shifa Pharmacy", "USD", 5.0
	got, err := s.SavePharmacy(PharmacyPatch{PharmacyName: &name, Currency: &cur, TaxRate: &tax})
	require.NoError(t, err)
	assert.Equal(t, "Al-Shifa Pharmacy", got.PharmacyName)

	sys := s.System()
	assert.Equal(t, "USD", sys.Currency)
	assert.Equal(t, 5.0, sys.TaxRate)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, got, reopened.Pharmacy())
	assert.Equal(t, sys, reopened.System())
}

func TestSaveSystem_Partial(t *testing.T) {
	s, _ := openTemp(t)
	off, threshold := false, 25
	got, err := s.SaveSystem(SystemPatch{AutoBackup: &off, LowStockThreshold: &threshold})
	require.NoError(t, err)
	assert.False(t, got.AutoBackup)
	assert.Equal(t, 25, got.LowStockThreshold)
	assert.True(t, got.Notifications)
	assert.Equal(t, "PKR", got.Currency)
}

func TestZeroThresholdFallsBackToDefault(t *testing.T) {
	s, _ := openTemp(t)
	zero := 0
	got, err := s.SaveSystem(SystemPatch{LowStockThreshold: &zero})
	require.NoError(t, err)
	assert.Equal(t, 10, got.LowStockThreshold)
}

func TestReset(t *testing.T) {
	s, path := openTemp(t)
	cur := "EUR"
	_, err := s.SavePharmacy(PharmacyPatch{Currency: &cur})
	require.NoError(t, err)
	require.NoError(t, s.Reset())
	assert.Equal(t, "PKR", s.Pharmacy().Currency)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "PKR", reopened.System().Currency)
}

func TestExportImport(t *testing.T) {
	src, _ := openTemp(t)
	name, tax := "City Chemist", 17.0
	_, err := src.SavePharmacy(PharmacyPatch{PharmacyName: &name, TaxRate: &tax})
	require.NoError(t, err)

	data, err := src.Export(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2025-01-02T03:04:05Z", doc["exportDate"])
	assert.Contains(t, doc, "pharmacySettings")
	assert.Contains(t, doc, "systemSettings")

	dst, _ := openTemp(t)
	require.NoError(t, dst.Import(data))
	assert.Equal(t, src.Pharmacy(), dst.Pharmacy())
	assert.Equal(t, src.System(), dst.System())

	assert.Error(t, dst.Import([]byte("{not json")))
}

func TestCurrencySymbol(t *testing.T) {
	cases := map[string]string{
		"PKR": "PKR ",
		"USD": "$",
		"EUR": "€",
		"GBP": "£",
		"INR": "₹",
		"AED": "AED ",
	}
	for code, want := range cases {
		assert.Equal(t, want, CurrencySymbol(code), code)
	}
}
