package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/httpapi"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over a read-only JSON API",
	Long: `Serve the catalog over HTTP. Endpoints:

  GET /api/skills            List skills (?q= to search)
  GET /api/skills/{name}     Full skill detail
  GET /api/recommend?task=   Skill recommendations for a task
  GET /api/stats             Corpus statistics
  GET /healthz               Health check

Examples:
  skillet serve
  skillet serve --host 0.0.0.0 --port 8080
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		skillDiscovery, pluginDiscovery, err := newDiscoveries()
		if err != nil {
			return err
		}

		store, err := openFreshStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
		server := httpapi.NewServer(addr, store, skillDiscovery, pluginDiscovery)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("Shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
			cancel()
		}()

		presenter.Info(fmt.Sprintf("Serving catalog API on http://%s", addr))
		return server.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind")
	serveCmd.Flags().Int("port", 7420, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
