package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/factoryvision/internal/adapters/turso"
	"github.com/emiliopalmerini/factoryvision/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the history database schema",
	Long: `Manage the history database schema.

serve and watch apply pending migrations automatically; use these commands
to inspect or roll back.

Examples:
  factoryvision migrate up       # Run all pending migrations
  factoryvision migrate down 0   # Roll back all migrations
  factoryvision migrate status   # Show the current version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [version]",
	Short: "Roll back to a version (default 0)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMigrateDown,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// openMigrator connects without auto-migrating, unlike NewAppContext.
func openMigrator(cmd *cobra.Command) (*turso.DB, *migrate.Runner, error) {
	if appConfig.History.URL == "" {
		return nil, nil, errHistoryDisabled
	}
	db, err := turso.NewDB(cmd.Context(), turso.Config{URL: appConfig.History.URL, AuthToken: appConfig.History.AuthToken})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	r, err := migrate.New(cmd.Context(), db.DB, cmd.OutOrStdout())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, r, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, r, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := r.Up(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if applied == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	st, err := r.Status(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d applied)\n", st.Current, applied)
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	target := 0
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	db, r, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	reverted, err := r.Down(cmd.Context(), target)
	if err != nil {
		return err
	}
	if reverted == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Already at or below target version")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated to version %d\n", target)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, r, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := r.Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %d\n", st.Current)
	fmt.Fprintf(out, "Latest version:  %d\n", st.Latest)
	if n := st.Pending(); n > 0 {
		fmt.Fprintf(out, "Pending: %d\n", n)
	}
	return nil
}
