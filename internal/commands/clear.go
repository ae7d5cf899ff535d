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
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
type ClearCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *ClearCmd) SetListName(name string) { c.listName = name }

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return nil }
func (c *ClearCmd) Synopsis() string  { return "Remove done items" }
func (c *ClearCmd) Usage() string     { return "vtodo clear [--list <list-name>]" }
func (c *ClearCmd) NeedsStore() bool  { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if code, ok := requireList(errOut, svc, c.listName); !ok {
		return code
	}

	n := svc.ClearDone(c.listName)
	if !cfg.Quiet {
		fmt.Fprintf(out, "removed %d\n", n)
	}
	return exitcode.Success
}
