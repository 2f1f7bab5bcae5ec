package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := OpenProfile(t.TempDir(), "default")
	if err != nil {
		t.Fatalf("OpenProfile: %v", err)
	}
	return p
}

func TestLoadMissingConfigUsesDefaults(t *testing.T) {
	p := testProfile(t)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timesheet.RequiredMinutes != 432 {
		t.Fatalf("RequiredMinutes = %d, want 432", cfg.Timesheet.RequiredMinutes)
	}
	if cfg.Polling.DelaySeconds != 60 {
		t.Fatalf("DelaySeconds = %d, want 60", cfg.Polling.DelaySeconds)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := testProfile(t)
	cfg, _ := Load(p)
	cfg.Portal.Site = "presenze.example.com"
	cfg.Polling.QuietHoursFrom = "20:00"
	cfg.Polling.QuietHoursTo = "07:00"
	if err := Save(p, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(p)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got.Portal.Site != "presenze.example.com" {
		t.Fatalf("Site = %q", got.Portal.Site)
	}
	if got.Portal.TimesheetURL() != "https://presenze.example.com/rpc/Cartellino.aspx" {
		t.Fatalf("TimesheetURL = %q", got.Portal.TimesheetURL())
	}
	if got.Polling.QuietHoursFrom != "20:00" || got.Polling.QuietHoursTo != "07:00" {
		t.Fatalf("quiet hours = %q..%q", got.Polling.QuietHoursFrom, got.Polling.QuietHoursTo)
	}
}

func TestLoadCorruptConfigFails(t *testing.T) {
	p := testProfile(t)
	if err := os.MkdirAll(filepath.Dir(p.ConfigPath()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p.ConfigPath(), []byte("not toml = = ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("Load should fail on unparsable config")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	p := testProfile(t)

	if _, err := p.LoadSession(); !errors.Is(err, ErrMissingLogin) {
		t.Fatalf("LoadSession err = %v, want ErrMissingLogin", err)
	}

	want := Session{CookieHeader: "a=1; b=2", EmployeeID: "1234"}
	if err := p.SaveSession(want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err := p.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got != want {
		t.Fatalf("LoadSession = %+v, want %+v", got, want)
	}
}

func TestProfileSwitchAndList(t *testing.T) {
	base := t.TempDir()
	if _, err := OpenProfile(base, "default"); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateProfile(base, "work"); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if _, err := CreateProfile(base, "work"); err == nil {
		t.Fatal("CreateProfile should refuse an existing name")
	}
	if err := SwitchProfile(base, "work"); err != nil {
		t.Fatalf("SwitchProfile: %v", err)
	}
	if err := SwitchProfile(base, "nope"); err == nil {
		t.Fatal("SwitchProfile should refuse a missing profile")
	}

	names, err := ListProfiles(base)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("ListProfiles = %v, want 2 entries", names)
	}
}

func TestValidProfileName(t *testing.T) {
	for _, ok := range []string{"default", "work-2024", "a.b_c"} {
		if !ValidProfileName(ok) {
			t.Fatalf("ValidProfileName(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "has space", "x/y", "waaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaytoolong"} {
		if ValidProfileName(bad) {
			t.Fatalf("ValidProfileName(%q) = true", bad)
		}
	}
}
