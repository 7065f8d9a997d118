package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
	"github.com/emiliopalmerini/factoryvision/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded snapshots",
	Long: `List the most recent snapshots recorded by serve or watch.

Requires FACTORY_HISTORY_URL.

Examples:
  factoryvision history            # Last 20 snapshots
  factoryvision history --limit 5  # Last 5 snapshots`,
	RunE: runHistory,
}

var historyLimit int

var errHistoryDisabled = errors.New("history is disabled: set FACTORY_HISTORY_URL")

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of snapshots to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if appConfig.History.URL == "" {
		return errHistoryDisabled
	}
	if historyLimit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", historyLimit)
	}

	app, err := NewAppContext(cmd.Context(), appConfig, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	records, err := app.Store.ListRecent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No snapshots recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FETCHED\tFINGERPRINT\tUNITS\tUTILIZATION\tCREW\tWORKING")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d/%d\n",
			util.FormatDateTime(r.FetchedAt),
			util.FormatFingerprint(r.Fingerprint),
			humanize.Comma(r.TotalProduction),
			domain.FormatPercent(r.AvgUtilization),
			r.ActiveWorkers,
			r.WorkingStations, r.StationCount,
		)
	}
	return w.Flush()
}
