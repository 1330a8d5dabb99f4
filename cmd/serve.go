package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/field-reports/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the export HTTP server",
	Long: `Start the Field Reports HTTP server.
The server streams project exports at /api/v1/projects/{slug}/export,
exposes Prometheus metrics at /metrics and periodically cleans the
tile, geocode and export caches.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if port := mustGetInt(cmd, "port"); port != 0 {
		a.cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		a.cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(a.context())
	defer cancel()

	reports, closer, err := a.openReports(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	exporter, err := a.exporter(nil)
	if err != nil {
		return err
	}

	go a.janitor().Run(ctx, a.cfg.Cache.CleanInterval)

	server := web.NewServer(a.cfg, reports, exporter, a.logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("error during shutdown", "err", err)
		}
	}()

	fmt.Printf("Starting Field Reports on http://%s\n", a.cfg.Web.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
