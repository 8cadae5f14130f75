// Package settings persists the pharmacy's business preferences (name,
// currency, tax rate, alert threshold, backups) in a small JSON file kept
// apart from the record store.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultCurrency       = "PKR"
	defaultLowStockAlerts = 10
)

// Pharmacy identifies the business on receipts.
type Pharmacy struct {
	PharmacyName string  `json:"pharmacyName"`
	OwnerName    string  `json:"ownerName"`
	Phone        string  `json:"phone"`
	Currency     string  `json:"currency"`
	TaxRate      float64 `json:"taxRate"`
}

// System holds behaviour switches.
type System struct {
	Currency          string  `json:"currency"`
	TaxRate           float64 `json:"taxRate"`
	Notifications     bool    `json:"notifications"`
	LowStockThreshold int     `json:"lowStockThreshold"`
	AutoBackup        bool    `json:"autoBackup"`
}

// PharmacyPatch is a partial update; nil fields are left alone.
type PharmacyPatch struct {
	PharmacyName *string  `json:"pharmacyName"`
	OwnerName    *string  `json:"ownerName"`
	Phone        *string  `json:"phone"`
	Currency     *string  `json:"currency"`
	TaxRate      *float64 `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
}

// SystemPatch is a partial update; nil fields are left alone.
type SystemPatch struct {
	Currency          *string  `json:"currency"`
	TaxRate           *float64 `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
	Notifications     *bool    `json:"notifications"`
	LowStockThreshold *int     `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	AutoBackup        *bool    `json:"autoBackup"`
}

// Export is the portable settings document.
type Export struct {
	PharmacySettings *Pharmacy `json:"pharmacySettings,omitempty"`
	SystemSettings   *System   `json:"systemSettings,omitempty"`
	ExportDate       string    `json:"exportDate,omitempty"`
}

// Store reads and writes the settings file. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// Open loads path if it exists. A missing file yields the defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("pharmacy.currency", defaultCurrency)
	v.SetDefault("system.currency", defaultCurrency)
	v.SetDefault("system.notifications", true)
	v.SetDefault("system.lowstockthreshold", defaultLowStockAlerts)
	v.SetDefault("system.autobackup", true)
	return v
}

func (s *Store) load() error {
	v := newViper()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("settings: read %s: %w", s.path, err)
		}
	}
	s.v = v
	return nil
}

// Pharmacy returns the current pharmacy settings.
func (s *Store) Pharmacy() Pharmacy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pharmacy()
}

func (s *Store) pharmacy() Pharmacy {
	return Pharmacy{
		PharmacyName: s.v.GetString("pharmacy.pharmacyname"),
		OwnerName:    s.v.GetString("pharmacy.ownername"),
		Phone:        s.v.GetString("pharmacy.phone"),
		Currency:     orDefault(s.v.GetString("pharmacy.currency"), defaultCurrency),
		TaxRate:      s.v.GetFloat64("pharmacy.taxrate"),
	}
}

// System returns the current system settings.
func (s *Store) System() System {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system()
}

func (s *Store) system() System {
	threshold := s.v.GetInt("system.lowstockthreshold")
	if threshold <= 0 {
		threshold = defaultLowStockAlerts
	}
	return System{
		Currency:          orDefault(s.v.GetString("system.currency"), defaultCurrency),
		TaxRate:           s.v.GetFloat64("system.taxrate"),
		Notifications:     s.v.GetBool("system.notifications"),
		LowStockThreshold: threshold,
		AutoBackup:        s.v.GetBool("system.autobackup"),
	}
}

// SavePharmacy merges p and mirrors currency and tax rate into the system
// settings, which the sales flow reads.
func (s *Store) SavePharmacy(p PharmacyPatch) (Pharmacy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setIf(s.v, "pharmacy.pharmacyname", p.PharmacyName)
	setIf(s.v, "pharmacy.ownername", p.OwnerName)
	setIf(s.v, "pharmacy.phone", p.Phone)
	setIf(s.v, "pharmacy.currency", p.Currency)
	setIf(s.v, "pharmacy.taxrate", p.TaxRate)

	updated := s.pharmacy()
	s.v.Set("system.currency", updated.Currency)
	s.v.Set("system.taxrate", updated.TaxRate)
	if err := s.write(); err != nil {
		return Pharmacy{}, err
	}
	log.Info().Str("currency", updated.Currency).Float64("tax_rate", updated.TaxRate).Msg("pharmacy settings saved")
	return updated, nil
}

// SaveSystem merges p.
func (s *Store) SaveSystem(p SystemPatch) (System, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setIf(s.v, "system.currency", p.Currency)
	setIf(s.v, "system.taxrate", p.TaxRate)
	setIf(s.v, "system.notifications", p.Notifications)
	setIf(s.v, "system.lowstockthreshold", p.LowStockThreshold)
	setIf(s.v, "system.autobackup", p.AutoBackup)
	if err := s.write(); err != nil {
		return System{}, err
	}
	log.Info().Msg("system settings saved")
	return s.system(), nil
}

// Reset deletes the file and returns to defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("settings: reset: %w", err)
	}
	s.v = newViper()
	s.v.SetConfigFile(s.path)
	log.Info().Msg("settings reset")
	return nil
}

// Export renders both sections as an indented JSON document.
func (s *Store) Export(now time.Time) ([]byte, error) {
	s.mu.Lock()
	p, sys := s.pharmacy(), s.system()
	s.mu.Unlock()
	return json.MarshalIndent(Export{
		PharmacySettings: &p,
		SystemSettings:   &sys,
		ExportDate:       now.UTC().Format(time.RFC3339),
	}, "", "  ")
}

// Import replaces whichever sections data contains.
func (s *Store) Import(data []byte) error {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings: import: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := doc.PharmacySettings; p != nil {
		s.v.Set("pharmacy.pharmacyname", p.PharmacyName)
		s.v.Set("pharmacy.ownername", p.OwnerName)
		s.v.Set("pharmacy.phone", p.Phone)
		s.v.Set("pharmacy.currency", p.Currency)
		s.v.Set("pharmacy.taxrate", p.TaxRate)
	}
	if sys := doc.SystemSettings; sys != nil {
		s.v.Set("system.currency", sys.Currency)
		s.v.Set("system.taxrate", sys.TaxRate)
		s.v.Set("system.notifications", sys.Notifications)
		s.v.Set("system.lowstockthreshold", sys.LowStockThreshold)
		s.v.Set("system.autobackup", sys.AutoBackup)
	}
	return s.write()
}

func (s *Store) write() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: mkdir: %w", err)
		}
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

var symbols = map[string]string{
	"PKR": "PKR ",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
}

// CurrencySymbol returns the display prefix for an ISO currency code.
func CurrencySymbol(code string) string {
	if sym, ok := symbols[code]; ok {
		return sym
	}
	return code + " "
}

func setIf[T any](v *viper.Viper, key string, val *T) {
	if val != nil {
		v.Set(key, *val)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
