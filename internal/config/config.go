// Package config handles stopweb profile directories and per-profile
// configuration. Profiles live under ~/.stopweb/profili (overridable via the
// STOPWEB_PROFILI_BASEDIR_PATH environment variable); a cursor file selects
// the active one. Each profile keeps its configuration in config/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the per-profile settings stopweb needs.
type Config struct {
	Portal    PortalConfig       `toml:"portal"`
	Login     LoginConfig        `toml:"login"`
	Timesheet TimesheetConfig    `toml:"timesheet"`
	Polling   PollingConfig      `toml:"polling"`
	API       APIConfig          `toml:"api"`
	Groups    map[string][]int64 `toml:"groups"`
}

// PortalConfig locates the presence portal endpoints. Only the site host is
// configured; the rpc paths are fixed by the portal product.
type PortalConfig struct {
	Site string `toml:"site"` // e.g. "presenze.example.com"
}

// BaseURL returns the https base URL for the configured site.
func (p PortalConfig) BaseURL() string {
	return "https://" + strings.TrimSpace(p.Site)
}

// TimesheetURL returns the cartellino rpc endpoint.
func (p PortalConfig) TimesheetURL() string { return p.BaseURL() + "/rpc/Cartellino.aspx" }

// DirectoryURL returns the rubrica rpc endpoint.
func (p PortalConfig) DirectoryURL() string { return p.BaseURL() + "/rpc/Rubrica.aspx" }

// FavoritesURL returns the preferiti rpc endpoint.
func (p PortalConfig) FavoritesURL() string { return p.BaseURL() + "/rpc/Preferiti.aspx" }

// LoginConfig configures the external login collaborator.
type LoginConfig struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	LandingPage    string `toml:"landing_page"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Headless       bool   `toml:"headless"`
}

// TimesheetConfig carries the presence policy used when deriving expected
// checkout and deficit figures.
type TimesheetConfig struct {
	RequiredMinutes   int `toml:"required_minutes"`    // daily required presence
	LunchBreakMinutes int `toml:"lunch_break_minutes"` // mandatory lunch break
}

// PollingConfig drives the eventi listen loop.
type PollingConfig struct {
	DelaySeconds   int    `toml:"delay_seconds"`
	OffsetMin      int    `toml:"offset_min_seconds"` // random jitter bounds
	OffsetMax      int    `toml:"offset_max_seconds"`
	QuietHoursFrom string `toml:"quiet_hours_from"` // "HH:MM", empty disables
	QuietHoursTo   string `toml:"quiet_hours_to"`
}

// APIConfig configures the optional HTTP/WebSocket exposure.
type APIConfig struct {
	Port   int `toml:"port"`
	WSPort int `toml:"ws_port"`
}

func defaults() Config {
	return Config{
		Login: LoginConfig{
			LandingPage:    "**/default.aspx*",
			TimeoutSeconds: 60,
			Headless:       true,
		},
		Timesheet: TimesheetConfig{
			RequiredMinutes:   432, // 07:12
			LunchBreakMinutes: 30,
		},
		Polling: PollingConfig{
			DelaySeconds: 60,
			OffsetMin:    0,
			OffsetMax:    30,
		},
		API: APIConfig{
			Port:   3000,
			WSPort: 3080,
		},
	}
}

// Load reads the profile's config.toml, falling back to defaults when the
// file is missing. A present but unparsable file is an error: silently
// ignoring a broken configuration would mask typos in the portal site.
func Load(p *Profile) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(p.ConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Polling.DelaySeconds <= 0 {
		cfg.Polling.DelaySeconds = defaults().Polling.DelaySeconds
	}
	return cfg, nil
}

// Save writes the configuration to the profile's config.toml, creating the
// config directory as needed.
func Save(p *Profile, cfg Config) error {
	dir := filepath.Dir(p.ConfigPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
