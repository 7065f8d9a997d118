package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/factoryvision/internal/app/tui"
	"github.com/emiliopalmerini/factoryvision/internal/logging"
	"github.com/emiliopalmerini/factoryvision/internal/util"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the factory dashboard in the terminal",
	Long: `Open the interactive terminal dashboard.

Logs are written to $XDG_DATA_HOME/factoryvision/watch.log while the
dashboard owns the screen.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logFile, err := openWatchLog()
	if err != nil {
		return err
	}
	defer logFile.Close()

	fileLogger, err := logging.New(appConfig.Log.Level, "json", logFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewAppContext(ctx, appConfig, fileLogger)
	if err != nil {
		return err
	}
	defer app.Close()

	mon := app.NewMonitor()
	model := tui.NewApp(mon)
	defer model.Close()

	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal dashboard: %w", err)
	}
	return nil
}

func openWatchLog() (*os.File, error) {
	dir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "watch.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
