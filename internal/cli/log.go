package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/logtail"
)

var (
	logLines  int
	logErrors bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Mostra la coda del log richieste del profilo",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&logLines, "righe", 50, "numero di righe da mostrare (0 = tutte)")
	logCmd.Flags().BoolVar(&logErrors, "errori", false, "mostra il log errori")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}

	name := "requests.log"
	if logErrors {
		name = "errors.log"
	}
	lines, err := logtail.Read(filepath.Join(e.profile.LogsDir(), name), logLines)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("log vuoto")
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
