package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// EnvBaseDir overrides the profiles base directory.
	EnvBaseDir = "STOPWEB_PROFILI_BASEDIR_PATH"

	defaultBaseDir     = "~/.stopweb/profili"
	defaultProfileName = "default"
	cursorFileName     = ".selezionato"
)

// ErrMissingLogin reports that no persisted session exists for the profile.
// Callers should run the login command before querying the portal.
var ErrMissingLogin = errors.New("no login session: run the login command first")

var profileNameRe = regexp.MustCompile(`^[A-Za-z0-9\-_.]{1,32}$`)

// Profile is a named directory holding all state for one portal identity:
// configuration, auth session, day-record cache, event state and logs.
type Profile struct {
	name string
	dir  string
}

// BaseDir resolves the profiles base directory.
func BaseDir() (string, error) {
	base := os.Getenv(EnvBaseDir)
	if strings.TrimSpace(base) == "" {
		base = defaultBaseDir
	}
	return expandPath(base)
}

// CurrentProfile opens the selected profile, creating the default one when
// nothing is selected yet.
func CurrentProfile() (*Profile, error) {
	base, err := BaseDir()
	if err != nil {
		return nil, err
	}
	name := defaultProfileName
	if data, err := os.ReadFile(filepath.Join(base, cursorFileName)); err == nil {
		if candidate := strings.TrimSpace(string(data)); ValidProfileName(candidate) {
			name = candidate
		}
	}
	return OpenProfile(base, name)
}

// OpenProfile opens (creating if necessary) the named profile under base.
func OpenProfile(base, name string) (*Profile, error) {
	if !ValidProfileName(name) {
		return nil, fmt.Errorf("invalid profile name %q", name)
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &Profile{name: name, dir: dir}, nil
}

// ValidProfileName reports whether name is acceptable as a profile directory.
func ValidProfileName(name string) bool {
	return profileNameRe.MatchString(name)
}

// ListProfiles returns the profile names present under base.
func ListProfiles(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && ValidProfileName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// SwitchProfile points the cursor file at an existing profile.
func SwitchProfile(base, name string) error {
	if !ValidProfileName(name) {
		return fmt.Errorf("invalid profile name %q", name)
	}
	if _, err := os.Stat(filepath.Join(base, name)); err != nil {
		return fmt.Errorf("profile %q does not exist", name)
	}
	return os.WriteFile(filepath.Join(base, cursorFileName), []byte(name), 0o644)
}

// CreateProfile creates a new empty profile directory.
func CreateProfile(base, name string) (*Profile, error) {
	if !ValidProfileName(name) {
		return nil, fmt.Errorf("invalid profile name %q", name)
	}
	dir := filepath.Join(base, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("profile %q already exists", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &Profile{name: name, dir: dir}, nil
}

// Name returns the profile name.
func (p *Profile) Name() string { return p.name }

// Dir returns the profile root directory.
func (p *Profile) Dir() string { return p.dir }

// ConfigPath returns the profile's TOML configuration file path.
func (p *Profile) ConfigPath() string { return filepath.Join(p.dir, "config", "config.toml") }

// CachePath returns the path of a file under the cache domain.
func (p *Profile) CachePath(name string) string { return filepath.Join(p.dir, "cache", name) }

// TimesheetCachePath returns the day-record cache file.
func (p *Profile) TimesheetCachePath() string { return p.CachePath("giornate.json") }

// DirectoryCachePath returns the employee list cache file.
func (p *Profile) DirectoryCachePath() string { return p.CachePath("elenco.json") }

// EventStatePath returns the event-state snapshot file.
func (p *Profile) EventStatePath() string { return filepath.Join(p.dir, "eventi", "stato.json") }

// EventQueuePath returns the append-only event log file.
func (p *Profile) EventQueuePath() string { return filepath.Join(p.dir, "eventi", "coda.jsonl") }

// EventHistoryDir returns the directory holding archived per-day event files.
func (p *Profile) EventHistoryDir() string { return filepath.Join(p.dir, "eventi", "storia") }

// ForceUpdatePath returns the sentinel file that forces an immediate poll
// cycle when present.
func (p *Profile) ForceUpdatePath() string { return filepath.Join(p.dir, "eventi", "aggiorna.adesso") }

// LogsDir returns the profile's log directory.
func (p *Profile) LogsDir() string { return filepath.Join(p.dir, "logs") }

// Clear removes one state domain (cache, auth, eventi, logs) or, with an
// empty domain, the whole profile directory.
func (p *Profile) Clear(domain string) error {
	target := p.dir
	if domain != "" {
		target = filepath.Join(p.dir, domain)
	}
	return os.RemoveAll(target)
}

// Session is the persisted outcome of a portal login.
type Session struct {
	CookieHeader string
	EmployeeID   string
}

func (p *Profile) cookiePath() string     { return filepath.Join(p.dir, "auth", "cookie") }
func (p *Profile) employeeIDPath() string { return filepath.Join(p.dir, "auth", "id_dipendente") }

// SaveSession persists the login session under the auth domain.
func (p *Profile) SaveSession(s Session) error {
	if err := os.MkdirAll(filepath.Join(p.dir, "auth"), 0o700); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	if err := os.WriteFile(p.cookiePath(), []byte(s.CookieHeader), 0o600); err != nil {
		return fmt.Errorf("write cookie: %w", err)
	}
	if err := os.WriteFile(p.employeeIDPath(), []byte(s.EmployeeID), 0o600); err != nil {
		return fmt.Errorf("write employee id: %w", err)
	}
	return nil
}

// LoadSession reads the persisted login session. A missing session surfaces
// as ErrMissingLogin.
func (p *Profile) LoadSession() (Session, error) {
	cookie, err := os.ReadFile(p.cookiePath())
	if err != nil {
		return Session{}, ErrMissingLogin
	}
	id, err := os.ReadFile(p.employeeIDPath())
	if err != nil {
		return Session{}, ErrMissingLogin
	}
	return Session{
		CookieHeader: strings.TrimSpace(string(cookie)),
		EmployeeID:   strings.TrimSpace(string(id)),
	}, nil
}
