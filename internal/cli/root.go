// Package cli implements the stopweb command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diego-devita/stopweb/internal/config"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/portal"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

var rootCmd = &cobra.Command{
	Use:   "stopweb",
	Short: "Assistente da riga di comando per il portale presenze",
	Long: `stopweb interroga il portale presenze aziendale: cartellino con cache
incrementale, rubrica, preferiti e un ciclo di ascolto che rileva i
cambiamenti e li registra come eventi.

I dati vivono in profili sotto ~/.stopweb/profili/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stopweb:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(rubricaCmd)
	rootCmd.AddCommand(elencoCmd)
	rootCmd.AddCommand(preferitiCmd)
	rootCmd.AddCommand(eventiCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(profiloCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(apiCmd)
}

// env bundles the per-invocation collaborators resolved from the active
// profile.
type env struct {
	profile *config.Profile
	cfg     config.Config
	session config.Session
	client  *portal.Client
	log     *zap.Logger
}

// newEnv resolves the active profile and its configuration. When needSession
// is true the persisted portal session is loaded and a client constructed; a
// missing session yields a hint to run `stopweb login`.
func newEnv(needSession bool) (*env, error) {
	profile, err := config.CurrentProfile()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, err
	}

	e := &env{profile: profile, cfg: cfg, log: zap.NewNop()}
	if !needSession {
		return e, nil
	}

	session, err := profile.LoadSession()
	if err != nil {
		if err == config.ErrMissingLogin {
			return nil, fmt.Errorf("nessuna sessione attiva: esegui `stopweb login` (profilo %s)", profile.Name())
		}
		return nil, err
	}
	e.session = session

	if logger, err := newRequestLogger(profile); err == nil {
		e.log = logger
	}
	e.client = portal.NewClient(portal.Endpoints{
		Timesheet: cfg.Portal.TimesheetURL(),
		Directory: cfg.Portal.DirectoryURL(),
		Favorites: cfg.Portal.FavoritesURL(),
	}, session.CookieHeader, e.log)
	return e, nil
}

// newRequestLogger writes one line per portal request under the profile's
// logs directory.
func newRequestLogger(profile *config.Profile) (*zap.Logger, error) {
	if err := os.MkdirAll(profile.LogsDir(), 0o755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(profile.LogsDir(), "requests.log")}
	cfg.ErrorOutputPaths = []string{filepath.Join(profile.LogsDir(), "errors.log")}
	return cfg.Build()
}

// engine builds the cache engine over the profile's timesheet store and the
// portal client.
func (e *env) engine() *timesheet.Engine {
	store := timesheet.NewStore(e.profile.TimesheetCachePath())
	if e.client == nil {
		return timesheet.NewEngine(store, nil)
	}
	policy := timesheet.Policy{
		RequiredMinutes:   e.cfg.Timesheet.RequiredMinutes,
		LunchBreakMinutes: e.cfg.Timesheet.LunchBreakMinutes,
	}
	fetch := timesheet.FetcherFunc(func(ctx context.Context, start, end string) (timesheet.Cache, error) {
		resp, err := e.client.FetchTimesheet(ctx, e.session.EmployeeID, start, end)
		if err != nil {
			return nil, err
		}
		return timesheet.Transform(resp, policy)
	})
	return timesheet.NewEngine(store, fetch)
}

// timesheetStore opens the profile's day-record store.
func (e *env) timesheetStore() *timesheet.Store {
	return timesheet.NewStore(e.profile.TimesheetCachePath())
}

// eventStore opens the profile's event state, loaded and ready.
func (e *env) eventStore() *events.Store {
	s := events.NewStore(e.profile.EventStatePath(), e.profile.EventQueuePath(), e.profile.EventHistoryDir())
	s.Load()
	return s
}
