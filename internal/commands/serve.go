package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/metrics"
	"vtodo/internal/rpc"
	"vtodo/internal/service"
	"vtodo/internal/transport"
	"vtodo/internal/transport/amqprpc"
	"vtodo/internal/transport/httprpc"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: it exposes the remote procedures
// over HTTP and, when configured, RabbitMQ until interrupted.
type ServeCmd struct {
	opts serveOptions
}

type serveOptions struct {
	httpAddr string
	noHTTP   bool
	amqpURL  string
}

func (o *serveOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.httpAddr, "http", "", "")
	fs.BoolVar(&o.noHTTP, "no-http", false, "")
	fs.StringVar(&o.amqpURL, "amqp", "", "")
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve remote procedures" }
func (c *ServeCmd) Usage() string {
	return "vtodo serve [--http <addr>] [--no-http] [--amqp <url>]"
}
func (c *ServeCmd) NeedsStore() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) { c.opts.register(fs) }

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.opts.noHTTP && c.opts.amqpURL == "" && cfg.Settings.Server.AMQP.URL == "" {
		fmt.Fprintln(errOut, "error: nothing to serve (--no-http without an amqp url)")
		return exitcode.UserError
	}
	if err := serve(ctx, cfg, svc, c.opts); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.TransportError
	}
	return exitcode.Success
}

// metricsSource is implemented by stores that record metrics.
type metricsSource interface {
	Metrics() *metrics.Metrics
}

func metricsOf(svc service.Service) *metrics.Metrics {
	if ms, ok := svc.(metricsSource); ok && ms.Metrics() != nil {
		return ms.Metrics()
	}
	return metrics.New()
}

// newProcedureRegistry registers the dispatcher for svc on a fresh registry.
func newProcedureRegistry(svc service.Service, log *slog.Logger, m *metrics.Metrics) (*transport.Registry, error) {
	reg := transport.NewRegistry()
	d := rpc.New(svc, rpc.WithLogger(log), rpc.WithMetrics(m))
	if err := d.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// serve runs the configured front-ends until ctx is cancelled or one fails.
func serve(ctx context.Context, cfg *config.Config, svc service.Service, opts serveOptions) error {
	log := cfg.Logger()
	m := metricsOf(svc)
	reg, err := newProcedureRegistry(svc, log, m)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if !opts.noHTTP {
		hc := cfg.Settings.Server.HTTP
		addr := hc.Addr
		if opts.httpAddr != "" {
			addr = opts.httpAddr
		}
		srv := httprpc.NewServer(reg, httprpc.Config{
			Addr:           addr,
			Tokens:         hc.Tokens,
			RateLimitRPS:   hc.RateLimitRPS,
			RateLimitBurst: hc.RateLimitBurst,
		}, httprpc.WithLogger(log), httprpc.WithMetrics(m))
		if len(hc.Tokens) == 0 {
			log.Warn("http endpoint has no tokens configured, accepting unauthenticated calls")
		}
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}

	amqpURL := cfg.Settings.Server.AMQP.URL
	if opts.amqpURL != "" {
		amqpURL = opts.amqpURL
	}
	if amqpURL != "" {
		srv, err := amqprpc.Dial(amqprpc.Config{URL: amqpURL, Queue: cfg.Settings.Server.AMQP.Queue}, reg, amqprpc.WithLogger(log))
		if err != nil {
			return err
		}
		defer srv.Close()
		g.Go(func() error { return srv.Serve(gctx) })
	}

	return g.Wait()
}
