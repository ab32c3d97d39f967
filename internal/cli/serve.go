package cli

import (
	"github.com/franckalain/nutrisnap/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Starts the HTTP API and websocket endpoint.

POST an image to /api/analyze, or connect to /ws and send
{"type": "analyze", "data": {"image": "<base64 or data URI>"}}.`,
		Example: `  # Start server on the configured port
  nutrisnap serve

  # Start server on a custom port
  nutrisnap serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if port != "" {
				cfg.Server.Port = port
			}

			p, err := newPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			srv := server.New(p, cfg.Server)
			return srv.Start(cmd.Context(), cfg.Server.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides config)")

	return cmd
}
