package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "vtodo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  vtodo                                          List the active list
  vtodo list [common flags] [--all] [--list <list-name>] [<list-name>]
  vtodo lists [common flags]
  vtodo add [common flags] [--list <list-name>] <text...>
  vtodo done [common flags] [--list <list-name>] <n>
  vtodo rm [common flags] [--list <list-name>] <n>
  vtodo mv [common flags] [--list <list-name>] <from> <to>
  vtodo clear [common flags] [--list <list-name>]
  vtodo createlist [common flags] <list-name>
  vtodo switch [common flags] <list-name>
  vtodo rmlist [common flags] [--force] <list-name>
  vtodo export [common flags] [--format json|yaml] [--output <file>]
  vtodo import [common flags] <file>
  vtodo serve [common flags] [--http <addr>] [--no-http] [--amqp <url>]
  vtodo ui [common flags] [--serve]
  vtodo call [common flags] [--local] [--url <url>] [--token <token>] <procedure> [payload]
  vtodo login [common flags]
  vtodo logout [common flags]
  vtodo import-google [common flags]
  vtodo help
  vtodo version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
