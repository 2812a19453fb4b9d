package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seniorplus/agenda/internal/event"
)

// Config is the top-level application configuration.
type Config struct {
	// StoragePath is the SQLite database file backing the key-value store.
	StoragePath string `yaml:"storage_path" json:"storage_path"`

	// Timezone is the IANA timezone used for "today" and date defaulting
	// (e.g. "America/Sao_Paulo"). Empty means the system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// SyncSchedule is the cron-style cadence for polling the shared key
	// for writes from other contexts (e.g. "@every 2s").
	SyncSchedule string `yaml:"sync_schedule" json:"sync_schedule"`

	// DefaultCategory labels events registered without an explicit
	// category. Empty or unknown labels fall back to Outro.
	DefaultCategory string `yaml:"default_category" json:"default_category"`

	// User is the session user recorded by the caregiver screen. Empty
	// means no session: the store resets and skips storage writes.
	User string `yaml:"user" json:"user"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		StoragePath:     defaultStoragePath(),
		Timezone:        "",
		SyncSchedule:    "@every 2s",
		DefaultCategory: event.CategoryOther,
		User:            "cuidador",
	}
}

// Normalize fills in missing/zero values so partially-filled configs from
// older versions still behave correctly.
func (c *Config) Normalize() {
	if c.StoragePath == "" {
		c.StoragePath = defaultStoragePath()
	}
	if c.SyncSchedule == "" {
		c.SyncSchedule = "@every 2s"
	}
	if !event.ValidCategory(c.DefaultCategory) {
		c.DefaultCategory = event.CategoryOther
	}
}

// Location resolves the configured timezone. Empty or unknown names fall
// back to the system local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (creating
// the parent directory) and returned. Otherwise the file is unmarshaled
// and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agenda-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agenda.db"
	}
	return filepath.Join(home, ".agenda", "agenda.db")
}
