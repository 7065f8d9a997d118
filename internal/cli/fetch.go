package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/factoryvision/internal/dashboard"
	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current metrics once",
	Long: `Fetch one snapshot from the metrics backend and print it.

Examples:
  factoryvision fetch         # Print KPIs, workers and stations
  factoryvision fetch --json  # Print the validated snapshot as JSON`,
	RunE: runFetch,
}

var fetchJSON bool

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Output as JSON")
}

func runFetch(cmd *cobra.Command, args []string) error {
	app, err := NewAppContext(cmd.Context(), appConfig, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.Source.Fetch(cmd.Context())
	if err != nil {
		logger.Error().Err(err).Str("outcome", domain.Outcome(err)).Msg("data fetch failed")
		return fmt.Errorf("%s: %w", domain.OfflineMessage, err)
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return printSnapshot(out, snap)
}

func printSnapshot(out io.Writer, snap *domain.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, c := range dashboard.Cards(snap.Factory) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Title, c.Value, c.Subtitle)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "WORKER\tNAME\tUTILIZATION\tUNITS\tUPH")
	for _, wk := range snap.Workers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\n",
			wk.ID, wk.Name, domain.FormatPercent(wk.Utilization), wk.Units, wk.UPH)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "STATION\tNAME\tSTATUS\tUNITS")
	for _, st := range snap.Stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", st.StationID, st.Name, st.Status.Label(), st.Units)
	}

	return w.Flush()
}
