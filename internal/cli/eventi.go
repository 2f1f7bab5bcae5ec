package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/api"
	"github.com/diego-devita/stopweb/internal/events"
	"github.com/diego-devita/stopweb/internal/poll"
	"github.com/diego-devita/stopweb/internal/state"
	"github.com/diego-devita/stopweb/internal/ui"
)

var eventiCmd = &cobra.Command{
	Use:   "eventi",
	Short: "Coda eventi: elenco, archivio, storia, ascolto",
}

var eventiListCmd = &cobra.Command{
	Use:   "list",
	Short: "Elenca gli eventi in coda",
	Args:  cobra.NoArgs,
	RunE:  runEventiList,
}

var eventiArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archivia la coda nella storia per giorno",
	Args:  cobra.NoArgs,
	RunE:  runEventiArchive,
}

var eventiHistoryCmd = &cobra.Command{
	Use:   "history <YYYYMMDD>",
	Short: "Mostra la storia di un giorno",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventiHistory,
}

var (
	listenAPI bool
)

var eventiListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Ascolta il portale e registra i cambiamenti",
	Long: `Avvia il ciclo di polling: a ogni passo riconcilia i preferiti della
rubrica, aggiorna il cartellino di oggi e registra gli eventi emessi. Il
conto alla rovescia si salta con "s"; il file eventi/aggiorna.adesso nel
profilo forza un aggiornamento immediato.`,
	Args: cobra.NoArgs,
	RunE: runEventiListen,
}

func init() {
	eventiListenCmd.Flags().BoolVar(&listenAPI, "api", false, "espone anche l'API HTTP/WebSocket")
	eventiCmd.AddCommand(eventiListCmd)
	eventiCmd.AddCommand(eventiArchiveCmd)
	eventiCmd.AddCommand(eventiHistoryCmd)
	eventiCmd.AddCommand(eventiListenCmd)
}

func runEventiList(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}
	queued, err := e.eventStore().ReadEvents()
	if err != nil {
		return err
	}
	if len(queued) == 0 {
		fmt.Println("nessun evento in coda")
		return nil
	}
	for _, entry := range queued {
		printEvent(entry)
	}
	return nil
}

func runEventiArchive(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}
	n, err := e.eventStore().Archive()
	if err != nil {
		return err
	}
	fmt.Printf("archiviati %d eventi\n", n)
	return nil
}

func runEventiHistory(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}
	history, err := e.eventStore().History(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("nessun evento per quel giorno")
		return nil
	}

	groups := make([]string, 0, len(history))
	for g := range history {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		fmt.Println(g)
		for _, entry := range history[g] {
			printEvent(entry)
		}
	}
	return nil
}

func printEvent(entry events.LogEntry) {
	fmt.Printf("  %s  %-40s %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Type, ui.DescribeEvent(entry))
}

func runEventiListen(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}

	engine := e.engine()
	evStore := e.eventStore()
	cycle := poll.NewCycle(e.client, engine, e.timesheetStore(), evStore, events.NewReconciler(evStore))

	st := &state.Store{}
	loop, err := poll.NewLoop(cycle, st, e.cfg.Polling, e.profile.ForceUpdatePath())
	if err != nil {
		return err
	}

	if listenAPI {
		server := api.NewServer(engine, e.client, st, e.log)
		loop.OnEvents = server.Notify
		defer server.Close()
		go func() {
			if err := server.Router().Run(fmt.Sprintf(":%d", e.cfg.API.Port)); err != nil {
				e.log.Sugar().Errorw("api server stopped", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		_ = loop.Run(ctx)
	}()

	return ui.Run(ui.Options{Store: st, Loop: loop})
}
