package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lualens/lualens/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored sessions over an HTTP API",
	Long: `Start a local HTTP server exposing the stored profiling sessions.

Endpoints:
  GET /api/sessions             - list sessions
  GET /api/sessions/:id         - session with its full report
  GET /api/sessions/:id/graph   - call graph nodes and edges
  GET /api/sessions/:id/hotpath - costliest call chain
  GET /api/stats                - store statistics
  GET /api/health               - health check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		s, err := server.New(server.Config{
			Port:     port,
			StoreDir: cfg.Store.Dir,
		})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		return s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to serve on (overrides config)")
}
