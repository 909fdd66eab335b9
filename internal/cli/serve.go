package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cardspace/internal/server"
	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		focus string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the arrangement engine behind the HTTP API",
		Long: `Serve loads the dataset, starts the engine's animation loop and exposes
it over HTTP under /api, with Prometheus metrics on /metrics. Every change is
saved through the configured persistence backends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if focus != "" {
				if err := errors.ValidateEntityID(focus); err != nil {
					return err
				}
			}
			ws, err := c.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := observability.NewMetrics(reg)
			if err != nil {
				return err
			}
			metrics.Install()
			defer observability.Reset()

			e := engine.New(ws.store,
				engine.WithConfig(ws.cfg.EngineConfig()),
				engine.WithCatalog(ws.cat),
				engine.WithLogger(logger),
			)
			e.Init(focus)
			loop := engine.NewLoop(e, ws.cfg.Server.Tick)
			srv := server.New(loop, server.WithLogger(logger), server.WithGatherer(reg))

			if addr == "" {
				addr = ws.cfg.Server.Addr
			}
			logger.Info("serving", "addr", addr, "entities", ws.store.Len(), "source", ws.source)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return loop.Run(gctx) })
			g.Go(func() error { return srv.Run(gctx, addr) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr setting)")
	cmd.Flags().StringVar(&focus, "focus", "", "entity to show first")
	_ = cmd.RegisterFlagCompletionFunc("focus", c.completeEntityIDs)
	return cmd
}
