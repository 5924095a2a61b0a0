package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skbidisigma1/groupme-cli/metric"
	"github.com/skbidisigma1/groupme-cli/web"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON web API",
		Long: "Serves group listings, message history, send, and statistics over\n" +
			"HTTP, plus Prometheus metrics at /metrics. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Web.Addr
			}

			registry := metric.NewRegistry()
			srv, err := web.NewServer(addr, a.client,
				web.WithLogger(a.logger),
				web.WithRegistry(registry))
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			ready := make(chan struct{})
			g.Go(func() error {
				return srv.Start(ctx, ready)
			})
			<-ready
			a.logger.Info("web API listening", "addr", addr)
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "bind address (default from config)")
	return cmd
}
