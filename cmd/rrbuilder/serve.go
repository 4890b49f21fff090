package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/build"
	"github.com/vango-dev/rrbuilder/internal/dev"
	"github.com/vango-dev/rrbuilder/internal/metrics"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		port    int
		host    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve descriptors over HTTP and push changes",
		Long: `Start the descriptor server.

The server compiles the manifest, serves the result over HTTP and
rebuilds whenever the manifest changes, notifying WebSocket watchers.

Endpoints:
  GET /routes              flat descriptors (?encoding=yaml)
  GET /routes/tree         nested descriptors
  GET /routes/{id}         one descriptor
  GET /healthz             build status
  GET /metrics             Prometheus metrics
  GET /_rrbuilder/watch    WebSocket change feed

Examples:
  rrbuilder serve
  rrbuilder serve --port=8080
  rrbuilder serve --host=0.0.0.0 --no-watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(g, port, host, noWatch)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not rebuild on manifest changes")

	return cmd
}

func runServe(g *globalFlags, port int, host string, noWatch bool) error {
	p, err := loadProject(g)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		p.config.Serve.Port = port
	}
	if host != "" {
		p.config.Serve.Host = host
	}
	if noWatch {
		watch := false
		p.config.Serve.Watch = &watch
	}
	if err := p.config.Validate(); err != nil {
		return err
	}

	m := metrics.New()
	srv := dev.NewServer(dev.ServerOptions{
		Config:  p.config,
		Builder: build.New(p.config, p.source, build.Options{Logger: p.logger, Metrics: m}),
		Logger:  p.logger,
		Metrics: m,
		OnRebuild: func(msg dev.Message, clients int) {
			switch msg.Type {
			case dev.MessageRoutes:
				success("v%d: %d routes (%d watchers notified)", msg.Version, msg.Count, clients)
			case dev.MessageError:
				errorMsg("v%d: build failed (%d watchers notified)", msg.Version, clients)
			}
		},
	})

	printBanner()
	fmt.Fprintln(stdout, "  serve")
	fmt.Fprintln(stdout)
	info("Manifest: %s", p.source.Name())
	info("Routes:   %s/routes", p.config.ServeURL())
	info("Watch:    ws://%s%s", p.config.ServeAddress(), dev.WatchPath)
	if !p.config.WatchEnabled() {
		warn("Manifest watching is off")
	}
	fmt.Fprintln(stdout)

	ctx, cancel := signalContext()
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	info("Server stopped")
	return nil
}
