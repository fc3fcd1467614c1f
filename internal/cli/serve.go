package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-svg/internal/server"
	"github.com/matzehuels/mdbook-svg/pkg/observability"
)

const defaultServeAddr = "127.0.0.1:3030"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	config  string
	metrics bool
}

// serveCommand creates the serve command, a preview server that renders
// diagrams and chapters on request.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultServeAddr, config: defaultBookTOML, metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram and chapter previews over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.config, "config", "c", opts.config, "path to book.toml")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics at /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	bf, _, err := c.loadBookFile(opts.config)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(bf.Config)
	if err != nil {
		return err
	}

	sopts := server.Options{Workers: cfg.Workers, Marker: cfg.InfoString}
	if opts.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetRenderHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		sopts.Gatherer = reg
	}

	eng, err := c.newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()
	sopts.Theme = eng.theme

	srv, err := server.New(eng, sopts, c.Logger)
	if err != nil {
		return err
	}
	printInfo("Serving %s previews", c.Preset.Name)
	printKeyValue("address", "http://"+opts.addr)
	printKeyValue("backend", eng.Backend())

	err = srv.ListenAndServe(ctx, opts.addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
