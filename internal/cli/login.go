package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/login"
)

var (
	loginCookie string
	loginID     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Registra una sessione del portale nel profilo",
	Long: `Salva cookie e id dipendente sotto auth/ nel profilo attivo. Il
cookie va catturato dal browser dopo l'accesso al portale e passato con
--cookie; l'id dipendente con --id.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginCookie, "cookie", "", "header Cookie della sessione autenticata")
	loginCmd.Flags().StringVar(&loginID, "id", "", "id dipendente")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if loginCookie == "" || loginID == "" {
		return fmt.Errorf("servono --cookie e --id: l'accesso interattivo non è supportato")
	}

	e, err := newEnv(false)
	if err != nil {
		return err
	}

	performer := login.StaticSession{CookieHeader: loginCookie, EmployeeID: loginID}
	session, err := performer.Perform(cmd.Context(), login.Credentials{}, func(step login.Step) {
		fmt.Println("login:", step)
	})
	if err != nil {
		return err
	}

	if err := e.profile.SaveSession(session); err != nil {
		return err
	}
	fmt.Printf("sessione salvata nel profilo %s\n", e.profile.Name())
	return nil
}
