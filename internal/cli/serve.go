package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/internal/api"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the aggregation HTTP API",
		Long: `Serve the aggregation HTTP API.

Routes:
  POST /v1/aggregate   run methods on a profile
  GET  /v1/methods     list methods
  GET  /healthz        liveness
  GET  /metrics        Prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			printInfo("Listening on %s", StyleLink.Render("http://"+cfg.Server.Addr))
			return api.NewServer(runner, cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
