package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
	"vtodo/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command. With --serve the remote procedures are
// exposed on the same store while the UI runs.
type UICmd struct {
	withServe bool
	opts      serveOptions

	// run is replaced in tests.
	run func(ctx context.Context, svc service.Service) error
}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"tui"} }
func (c *UICmd) Synopsis() string  { return "Open the interactive terminal UI" }
func (c *UICmd) Usage() string {
	return "vtodo ui [--serve] [--http <addr>] [--no-http] [--amqp <url>]"
}
func (c *UICmd) NeedsStore() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.withServe, "serve", false, "")
	c.opts.register(fs)
}

// SetRunner replaces the UI loop (for testing).
func (c *UICmd) SetRunner(run func(ctx context.Context, svc service.Service) error) { c.run = run }

// SetServe enables serving alongside the UI (for testing).
func (c *UICmd) SetServe(on bool, opts serveOptions) {
	c.withServe = on
	c.opts = opts
}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	run := c.run
	if run == nil {
		run = tui.Run
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	if c.withServe {
		// The UI owns the terminal; only errors reach stderr while it runs.
		scfg := *cfg
		if !scfg.Debug {
			scfg.Settings.Log.Level = "error"
		}
		go func() {
			err := serve(ctx, &scfg, svc, c.opts)
			if err != nil {
				cancel()
			}
			serveErr <- err
		}()
	}

	if err := run(ctx, svc); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	cancel()
	if c.withServe {
		if err := <-serveErr; err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.TransportError
		}
	}
	return exitcode.Success
}
