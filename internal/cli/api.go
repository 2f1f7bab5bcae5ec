package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/api"
)

var apiPort int

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Espone il cartellino e i preferiti via HTTP",
	Long: `Avvia il server HTTP:
  GET /stopweb/api/timbrature/:dataInizio/:dataFine
  GET /stopweb/api/preferiti
  GET /stopweb/api/stato
  GET /stopweb/api/eventi (WebSocket)`,
	Args: cobra.NoArgs,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().IntVar(&apiPort, "porta", 0, "porta di ascolto (default dalla configurazione)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}

	port := apiPort
	if port == 0 {
		port = e.cfg.API.Port
	}

	server := api.NewServer(e.engine(), e.client, nil, e.log)
	defer server.Close()
	fmt.Printf("API in ascolto su :%d\n", port)
	return server.Router().Run(fmt.Sprintf(":%d", port))
}
