package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diego-devita/stopweb/internal/dateutil"
	"github.com/diego-devita/stopweb/internal/timesheet"
)

var (
	fetchToday       bool
	fetchYesterday   bool
	fetchMonth       bool
	fetchMonthNum    int
	fetchYear        int
	fetchFromMinus   string
	fetchStart       string
	fetchEnd         string
	fetchNoCache     bool
	fetchOnlyCache   bool
	fetchFillGaps    bool
	fetchTodayFresh  bool
	fetchCacheStatus bool
	fetchJSON        bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Scarica il cartellino per un intervallo di giorni",
	Long: `Scarica il cartellino usando la cache locale: vengono richiesti al
portale solo i sottointervalli mancanti. Senza opzioni mostra oggi.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchToday, "oggi", false, "solo oggi")
	fetchCmd.Flags().BoolVar(&fetchYesterday, "ieri", false, "solo ieri")
	fetchCmd.Flags().BoolVar(&fetchMonth, "mese", false, "il mese corrente")
	fetchCmd.Flags().IntVar(&fetchMonthNum, "mesenum", 0, "un mese specifico (1-12)")
	fetchCmd.Flags().IntVar(&fetchYear, "anno", 0, "anno per --mesenum")
	fetchCmd.Flags().StringVar(&fetchFromMinus, "da", "", "da oggi meno N giorni/settimane/mesi, es. 7d, 2w, 1m")
	fetchCmd.Flags().StringVar(&fetchStart, "inizio", "", "inizio esplicito YYYYMMDD")
	fetchCmd.Flags().StringVar(&fetchEnd, "fine", "", "fine esplicita YYYYMMDD")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "nocache", false, "ignora la cache e riscarica tutto l'intervallo")
	fetchCmd.Flags().BoolVar(&fetchOnlyCache, "onlycache", false, "non contattare il portale")
	fetchCmd.Flags().BoolVar(&fetchFillGaps, "fillgaps", false, "con --onlycache, riempie i giorni mancanti con segnaposto")
	fetchCmd.Flags().BoolVar(&fetchTodayFresh, "refresh-oggi", true, "riscarica sempre il giorno corrente")
	fetchCmd.Flags().BoolVar(&fetchCacheStatus, "cache-status", false, "mostra la provenienza di ogni giorno")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output JSON grezzo")
}

func runFetch(cmd *cobra.Command, args []string) error {
	start, end, err := dateutil.EvaluateRange(dateutil.RangeOptions{
		Start:          fetchStart,
		End:            fetchEnd,
		Today:          fetchToday,
		Yesterday:      fetchYesterday,
		CurrentMonth:   fetchMonth,
		Month:          fetchMonthNum,
		Year:           fetchYear,
		FromTodayMinus: fetchFromMinus,
	})
	if err != nil {
		return err
	}

	e, err := newEnv(!fetchOnlyCache)
	if err != nil {
		return err
	}

	got, err := e.engine().FetchRange(cmd.Context(), timesheet.Options{
		Start:            start,
		End:              end,
		NoCache:          fetchNoCache,
		OnlyCache:        fetchOnlyCache,
		FetchTodayAlways: fetchTodayFresh,
		FillGaps:         fetchFillGaps,
	})
	if err != nil {
		return err
	}

	if fetchJSON {
		raw, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}
	fmt.Print(renderTimesheet(got, fetchCacheStatus))
	return nil
}
