package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/portal"
)

var (
	rubricaFavorites bool
	rubricaJSON      bool
)

var rubricaCmd = &cobra.Command{
	Use:   "rubrica [iddip]",
	Short: "Consulta la rubrica presenze",
	Long: `Mostra lo stato presenza dei colleghi. Senza argomenti interroga
l'intera rubrica; con --preferiti solo il gruppo dei preferiti.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRubrica,
}

func init() {
	rubricaCmd.Flags().BoolVar(&rubricaFavorites, "preferiti", false, "solo i preferiti")
	rubricaCmd.Flags().BoolVar(&rubricaJSON, "json", false, "output JSON grezzo")
}

func runRubrica(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}

	target := portal.DirectoryAll
	if rubricaFavorites {
		target = portal.DirectoryFavorites
	}
	if len(args) == 1 {
		target = args[0]
	}

	entries, err := e.client.FetchDirectory(cmd.Context(), target)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FullName < entries[j].FullName })

	if rubricaJSON {
		raw, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}
	fmt.Print(renderDirectory(entries))
	return nil
}

var elencoCmd = &cobra.Command{
	Use:   "elenco",
	Short: "Elenca tutti i dipendenti visibili",
	Long: `Scarica l'elenco completo dei dipendenti e lo salva nella cache del
profilo, utile per recuperare gli id da usare con i preferiti.`,
	Args: cobra.NoArgs,
	RunE: runElenco,
}

var elencoCached bool

func init() {
	elencoCmd.Flags().BoolVar(&elencoCached, "cached", false, "usa l'elenco salvato senza contattare il portale")
}

func runElenco(cmd *cobra.Command, args []string) error {
	e, err := newEnv(!elencoCached)
	if err != nil {
		return err
	}

	var list []portal.EmployeeListEntry
	if elencoCached {
		raw, err := os.ReadFile(e.profile.DirectoryCachePath())
		if err != nil {
			return fmt.Errorf("nessun elenco in cache: esegui `stopweb elenco` senza --cached")
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
	} else {
		list, err = e.client.FetchEmployeeList(cmd.Context())
		if err != nil {
			return err
		}
		if raw, err := json.MarshalIndent(list, "", "  "); err == nil {
			if err := os.MkdirAll(filepath.Dir(e.profile.DirectoryCachePath()), 0o755); err == nil {
				_ = os.WriteFile(e.profile.DirectoryCachePath(), raw, 0o644)
			}
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].LastName < list[j].LastName })
	for _, entry := range list {
		fmt.Printf("%6d  %s %s\n", entry.ID, entry.LastName, entry.Name)
	}
	return nil
}
