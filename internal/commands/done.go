package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it twice
// reopens the item.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) { c.listName = name }

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle an item's done flag" }
func (c *DoneCmd) Usage() string     { return "vtodo done [--list <list-name>] <n>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	idx, err := parseItemArgs(args, 1)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := svc.ToggleItem(c.listName, idx[0]); err != nil {
		if errors.Is(err, service.ErrOutOfRange) {
			fmt.Fprintf(errOut, "error: item number out of range: %s\n", args[0])
			return exitcode.UserError
		}
		return reportErr(errOut, svc, c.listName, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
