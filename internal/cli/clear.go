package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearDomains = map[string]string{
	"cache":  "cartellino ed elenco dipendenti",
	"auth":   "sessione del portale",
	"eventi": "stato, coda e storia degli eventi",
	"logs":   "log delle richieste",
}

var clearCmd = &cobra.Command{
	Use:   "clear <dominio>",
	Short: "Svuota una parte dello stato del profilo",
	Long:  "Domini: cache, auth, eventi, logs.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	domain := args[0]
	descr, ok := clearDomains[domain]
	if !ok {
		return fmt.Errorf("dominio %q sconosciuto (cache, auth, eventi, logs)", domain)
	}

	e, err := newEnv(false)
	if err != nil {
		return err
	}
	if err := e.profile.Clear(domain); err != nil {
		return err
	}
	fmt.Printf("rimosso: %s\n", descr)
	return nil
}
