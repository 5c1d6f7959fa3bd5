package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/live"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		port      int
		host      string
		dataset   string
		snapshots bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live preview server",
		Long: `Serve the mounted app. Browsers receive every reconciliation over a
WebSocket and send input events back.

Endpoints:
  GET  /            page with the app and the live client
  GET  /fragment    app markup
  GET  /state       app state as JSON
  POST /events      apply an event {"path":[1,0],"type":"change","value":"Ann"}
  GET  /ws          WebSocket stream
  GET  /metrics     Prometheus metrics (serve.metrics)
  /snapshots        snapshot store (--snapshots)

Examples:
  inplace serve
  inplace serve --port=8080 --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var opts []live.Option
			if cfg.Serve.Metrics {
				opts = append(opts, live.WithMetrics(instrument.NewMetrics()))
			}
			if snapshots {
				store, err := openStore(cfg)
				if err != nil {
					return err
				}
				opts = append(opts, live.WithStore(store))
			}

			srv, err := engine(cmd, cfg, dataset, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd, "Serving on %s", cfg.URL())
			return srv.ListenAndServe(ctx, cfg.Address())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "table", "Sample table to mount")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "Expose the snapshot store")

	return cmd
}
