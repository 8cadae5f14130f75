package worker

// backup.go
// Periodic export of every collection to a timestamped JSON file. Runs only
// while the autoBackup system setting is on; the setting is re-read on each
// tick so toggling it needs no restart.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pharmapos/internal/settings"
	"pharmapos/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	backupPrefix    = "backup_"
	backupExt       = ".json"
	backupStampForm = "20060102T150405.000Z"
)

// SettingsSource is what the backup reads from the settings store.
type SettingsSource interface {
	System() settings.System
	Export(now time.Time) ([]byte, error)
}

// BackupConfig holds all dependencies for the backup goroutine.
type BackupConfig struct {
	Engine   *store.Engine
	Settings SettingsSource
	Dir      string
	Interval time.Duration
	// Keep is how many backup files to retain; zero keeps all.
	Keep int
	Now  func() time.Time
}

// Snapshot is the on-disk backup document.
type Snapshot struct {
	ExportDate  string                       `json:"exportDate"`
	Settings    json.RawMessage              `json:"settings,omitempty"`
	Collections map[string][]json.RawMessage `json:"collections"`
}

// StartBackupCron launches a goroutine that writes a backup every Interval
// while auto backup is enabled. It stops when ctx is cancelled.
func StartBackupCron(ctx context.Context, cfg BackupConfig) {
	if cfg.Interval <= 0 {
		log.Info().Msg("backup_cron: disabled (no interval)")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Str("dir", cfg.Dir).Msg("backup_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("backup_cron: shutting down")
				return
			case <-ticker.C:
				if cfg.Settings != nil && !cfg.Settings.System().AutoBackup {
					log.Debug().Msg("backup_cron: auto backup off, skipping tick")
					continue
				}
				if _, err := RunBackup(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("backup_cron: backup failed")
				}
			}
		}
	}()
}

// RunBackup writes one snapshot of every registered collection and prunes
// old files beyond Keep. It returns the path written.
func RunBackup(ctx context.Context, cfg BackupConfig) (string, error) {
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	at := now().UTC()

	snap := Snapshot{
		ExportDate:  at.Format(store.TimestampLayout),
		Collections: map[string][]json.RawMessage{},
	}
	for _, name := range cfg.Engine.Registry().Names() {
		rows, err := cfg.Engine.Select(ctx, name, store.Filters{})
		if err != nil {
			return "", fmt.Errorf("backup: read %s: %w", name, err)
		}
		docs := make([]json.RawMessage, 0, len(rows))
		for _, r := range rows {
			data, err := store.EncodeRecord(r)
			if err != nil {
				return "", fmt.Errorf("backup: encode %s/%s: %w", name, r.ID(), err)
			}
			docs = append(docs, data)
		}
		snap.Collections[name] = docs
	}
	if cfg.Settings != nil {
		data, err := cfg.Settings.Export(at)
		if err != nil {
			return "", fmt.Errorf("backup: settings: %w", err)
		}
		snap.Settings = data
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Dir, backupPrefix+at.Format(backupStampForm)+backupExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", fmt.Errorf("backup: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("backup: rename: %w", err)
	}

	total := 0
	for _, docs := range snap.Collections {
		total += len(docs)
	}
	log.Info().Str("path", path).Int("records", total).Msg("backup_cron: backup written")

	if cfg.Keep > 0 {
		prune(cfg.Dir, cfg.Keep)
	}
	return path, nil
}

// RestoreBackup upserts every record of a snapshot. Records absent from the
// snapshot are left in place. Collections the registry does not know are
// skipped. It returns how many records were written.
func RestoreBackup(ctx context.Context, eng *store.Engine, path string) (int, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("restore: read: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return 0, fmt.Errorf("restore: decode: %w", err)
	}

	n := 0
	for _, name := range eng.Registry().Names() {
		docs := snap.Collections[name]
		if len(docs) == 0 {
			continue
		}
		recs := make([]store.Record, 0, len(docs))
		for _, d := range docs {
			rec, err := store.DecodeRecord(d)
			if err != nil {
				return n, fmt.Errorf("restore: %s: %w", name, err)
			}
			recs = append(recs, rec)
		}
		if _, err := eng.Insert(ctx, name, recs...); err != nil {
			return n, fmt.Errorf("restore: write %s: %w", name, err)
		}
		n += len(recs)
	}
	for name := range snap.Collections {
		if _, ok := eng.Registry().Lookup(name); !ok {
			log.Warn().Str("collection", name).Msg("restore: unknown collection skipped")
		}
	}
	log.Info().Str("path", path).Int("records", n).Msg("restore: done")
	return n, nil
}

// ListBackups returns backup file paths in dir, oldest first.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func prune(dir string, keep int) {
	files, err := ListBackups(dir)
	if err != nil {
		log.Warn().Err(err).Msg("backup_cron: cannot list backups for pruning")
		return
	}
	for len(files) > keep {
		if err := os.Remove(files[0]); err != nil {
			log.Warn().Err(err).Str("path", files[0]).Msg("backup_cron: prune failed")
		}
		files = files[1:]
	}
}
