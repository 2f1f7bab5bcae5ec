package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/config"
)

var (
	profiloList   bool
	profiloSwitch string
	profiloCreate string
	profiloInit   bool
	profiloSite   string
)

var profiloCmd = &cobra.Command{
	Use:   "profilo",
	Short: "Gestisce i profili stopweb",
	Long: `Senza opzioni mostra il profilo attivo. I profili vivono sotto
~/.stopweb/profili/ (variabile STOPWEB_PROFILI_BASEDIR_PATH per cambiarla)
e ognuno tiene configurazione, sessione, cache ed eventi separati.`,
	Args: cobra.NoArgs,
	RunE: runProfilo,
}

func init() {
	profiloCmd.Flags().BoolVar(&profiloList, "lista", false, "elenca i profili")
	profiloCmd.Flags().StringVar(&profiloSwitch, "cambia", "", "seleziona un altro profilo")
	profiloCmd.Flags().StringVar(&profiloCreate, "crea", "", "crea un nuovo profilo")
	profiloCmd.Flags().BoolVar(&profiloInit, "init", false, "scrive la configurazione corrente su disco")
	profiloCmd.Flags().StringVar(&profiloSite, "seturls", "", "imposta il sito del portale, es. presenze.example.com")
}

func runProfilo(cmd *cobra.Command, args []string) error {
	base, err := config.BaseDir()
	if err != nil {
		return err
	}

	switch {
	case profiloList:
		names, err := config.ListProfiles(base)
		if err != nil {
			return err
		}
		current, err := config.CurrentProfile()
		if err != nil {
			return err
		}
		for _, name := range names {
			marker := "  "
			if name == current.Name() {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
		return nil

	case profiloCreate != "":
		p, err := config.CreateProfile(base, profiloCreate)
		if err != nil {
			return err
		}
		fmt.Printf("profilo %s creato in %s\n", p.Name(), p.Dir())
		return nil

	case profiloSwitch != "":
		if err := config.SwitchProfile(base, profiloSwitch); err != nil {
			return err
		}
		fmt.Printf("profilo attivo: %s\n", profiloSwitch)
		return nil
	}

	e, err := newEnv(false)
	if err != nil {
		return err
	}

	if profiloSite != "" {
		e.cfg.Portal.Site = profiloSite
		profiloInit = true
	}
	if profiloInit {
		if err := config.Save(e.profile, e.cfg); err != nil {
			return err
		}
		fmt.Printf("configurazione scritta in %s\n", e.profile.ConfigPath())
		return nil
	}

	fmt.Printf("profilo attivo: %s\n", e.profile.Name())
	fmt.Printf("directory:      %s\n", e.profile.Dir())
	if e.cfg.Portal.Site != "" {
		fmt.Printf("portale:        %s\n", e.cfg.Portal.BaseURL())
	} else {
		fmt.Println("portale:        non configurato (usa --seturls)")
	}
	return nil
}
