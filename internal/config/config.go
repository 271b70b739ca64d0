package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"calwidget/internal/layout"
	"calwidget/internal/model"
)

// SeedConfig describes a single ICS source used to seed the initial event
// collection. Either URL (fetched over HTTP) or Path (read from disk) is
// set; URL wins when both are present.
type SeedConfig struct {
	// ID is an internal identifier used for logging and de-dup.
	ID string `yaml:"id" json:"id"`
	// URL is an ICS subscription endpoint.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Path is a local ICS file.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the widget UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LayoutConfig exposes the week-view pixel metrics.
type LayoutConfig struct {
	RowHeightPx      int `yaml:"row_height_px" json:"row_height_px"`
	MinEventHeightPx int `yaml:"min_event_height_px" json:"min_event_height_px"`
	TopPaddingPx     int `yaml:"top_padding_px" json:"top_padding_px"`
	EventGapPx       int `yaml:"event_gap_px" json:"event_gap_px"`
}

// Metrics converts the config block into layout metrics, filling defaults.
func (l LayoutConfig) Metrics() layout.Metrics {
	m := layout.Metrics{
		RowHeightPx:      l.RowHeightPx,
		MinEventHeightPx: l.MinEventHeightPx,
		TopPaddingPx:     l.TopPaddingPx,
		EventGapPx:       l.EventGapPx,
	}
	m.Normalize()
	return m
}

// SnapshotConfig controls the periodic headless capture of the widget page.
type SnapshotConfig struct {
	// Cron is a cron-style schedule (e.g. "*/15 * * * *"). Empty disables
	// periodic capture.
	Cron string `yaml:"cron" json:"cron"`
	// Width / Height are the capture viewport dimensions in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	// Path is where the PNG preview is written.
	Path string `yaml:"path" json:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the widget UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the daemon resolves "today" and day
	// parameters in (e.g. "Asia/Seoul"). Empty means the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// View is the initial view mode: "month" (default) or "week".
	View string `yaml:"view" json:"view"`

	// DefaultColor is applied to events saved without a color.
	DefaultColor string `yaml:"default_color" json:"default_color"`

	// Layout holds the week-view pixel metrics.
	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// Snapshot controls periodic preview capture.
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// Seeds is the list of ICS sources loaded into the collection at start.
	Seeds []SeedConfig `yaml:"seeds" json:"seeds"`

	// MirrorPath, if set, receives an ICS snapshot of the collection after
	// every create/update/delete.
	MirrorPath string `yaml:"mirror_path,omitempty" json:"mirror_path,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// Location resolves the configured timezone. Empty or unknown names fall
// back to the host's local zone so the daemon keeps a single zone for
// "today" and date parameters either way.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "",
		View:         string(model.ViewMonth),
		DefaultColor: model.DefaultEventColor,
		Layout: LayoutConfig{
			RowHeightPx:      layout.DefaultRowHeightPx,
			MinEventHeightPx: layout.DefaultMinEventHeightPx,
			TopPaddingPx:     layout.DefaultTopPaddingPx,
			EventGapPx:       layout.DefaultEventGapPx,
		},
		Snapshot: SnapshotConfig{
			Cron:   "",
			Width:  1280,
			Height: 900,
			Path:   "./cache/preview.png",
		},
		Seeds:     []SeedConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch model.ViewMode(c.View) {
	case model.ViewMonth, model.ViewWeek:
		// ok
	default:
		c.View = string(model.ViewMonth)
	}
	if c.DefaultColor == "" {
		c.DefaultColor = model.DefaultEventColor
	}
	if c.Layout.RowHeightPx <= 0 {
		c.Layout.RowHeightPx = layout.DefaultRowHeightPx
	}
	if c.Layout.MinEventHeightPx <= 0 {
		c.Layout.MinEventHeightPx = layout.DefaultMinEventHeightPx
	}
	if c.Layout.TopPaddingPx < 0 {
		c.Layout.TopPaddingPx = layout.DefaultTopPaddingPx
	}
	if c.Layout.EventGapPx < 0 {
		c.Layout.EventGapPx = layout.DefaultEventGapPx
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = 1280
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = 900
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "./cache/preview.png"
	}
	if c.Seeds == nil {
		c.Seeds = []SeedConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write
//     a default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
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

// Save writes the given configuration to the specified path.
//
// The parent directory is created (0700) if needed, and the file is
// written atomically via a temp file + rename with 0600 perms.
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

	tmp, err := os.CreateTemp(dir, ".calwidget-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
