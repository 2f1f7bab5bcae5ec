package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	prefAdd    []int64
	prefRemove []int64
	prefSet    []int64
	prefGroup  string
	prefOrari  bool
)

var preferitiCmd = &cobra.Command{
	Use:   "preferiti",
	Short: "Gestisce il gruppo dei preferiti",
	Long: `Senza opzioni elenca i preferiti correnti. Con --aggiungi, --rimuovi
o --imposta modifica il gruppo; --gruppo applica un gruppo definito nella
configurazione del profilo.`,
	Args: cobra.NoArgs,
	RunE: runPreferiti,
}

func init() {
	preferitiCmd.Flags().Int64SliceVar(&prefAdd, "aggiungi", nil, "id da aggiungere")
	preferitiCmd.Flags().Int64SliceVar(&prefRemove, "rimuovi", nil, "id da rimuovere")
	preferitiCmd.Flags().Int64SliceVar(&prefSet, "imposta", nil, "sostituisce l'intero gruppo")
	preferitiCmd.Flags().StringVar(&prefGroup, "gruppo", "", "applica un gruppo dalla configurazione")
	preferitiCmd.Flags().BoolVar(&prefOrari, "orari", false, "mostra gli orari dei preferiti")
}

func runPreferiti(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if prefOrari {
		schedules, err := e.client.FetchSchedules(ctx)
		if err != nil {
			return err
		}
		for _, s := range schedules {
			fmt.Printf("%-10s %-40s min %.2f  medie %.2f\n", s.Code, s.Description, s.MinHours, s.AvgHours)
		}
		return nil
	}

	switch {
	case prefGroup != "":
		ids, ok := e.cfg.Groups[prefGroup]
		if !ok {
			return fmt.Errorf("gruppo %q non definito nella configurazione", prefGroup)
		}
		if err := e.client.SaveFavorites(ctx, ids); err != nil {
			return err
		}
		fmt.Printf("gruppo %q applicato (%d preferiti)\n", prefGroup, len(ids))

	case len(prefSet) > 0:
		if err := e.client.SaveFavorites(ctx, prefSet); err != nil {
			return err
		}
		fmt.Printf("preferiti impostati (%d)\n", len(prefSet))

	case len(prefAdd) > 0 || len(prefRemove) > 0:
		current, err := e.client.FetchFavorites(ctx)
		if err != nil {
			return err
		}
		ids := make(map[int64]struct{}, len(current.Favorites))
		for _, f := range current.Favorites {
			ids[f.ID] = struct{}{}
		}
		for _, id := range prefAdd {
			ids[id] = struct{}{}
		}
		for _, id := range prefRemove {
			delete(ids, id)
		}
		merged := make([]int64, 0, len(ids))
		for id := range ids {
			merged = append(merged, id)
		}
		sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
		if err := e.client.SaveFavorites(ctx, merged); err != nil {
			return err
		}
		fmt.Printf("preferiti aggiornati (%d)\n", len(merged))
	}

	favorites, err := e.client.FetchFavorites(ctx)
	if err != nil {
		return err
	}
	if len(favorites.Favorites) == 0 {
		fmt.Println("nessun preferito")
		return nil
	}
	for _, f := range favorites.Favorites {
		fmt.Printf("%6d  %s %s\n", f.ID, f.LastName, f.Name)
	}
	return nil
}
