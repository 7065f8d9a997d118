package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/factoryvision/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard server. The dashboard refreshes itself on the
configured interval.

Examples:
  factoryvision serve              # Start on the configured port (default 8080)
  factoryvision serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides FACTORY_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	port := appConfig.Server.Port
	if servePort != 0 {
		port = servePort
	}

	mon := app.NewMonitor()
	server := web.NewServer(port, mon, app.Store, logger.With().Str("component", "web").Logger())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := mon.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		mon.Stop()
		return nil
	})
	g.Go(func() error {
		return server.Start(gctx)
	})

	err = g.Wait()
	logger.Info().Msg("shut down")
	return err
}
