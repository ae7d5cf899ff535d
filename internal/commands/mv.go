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
	Register(&MvCmd{})
}

// MvCmd implements the mv command.
type MvCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *MvCmd) SetListName(name string) { c.listName = name }

func (c *MvCmd) Name() string      { return "mv" }
func (c *MvCmd) Aliases() []string { return []string{"move"} }
func (c *MvCmd) Synopsis() string  { return "Move an item to another position" }
func (c *MvCmd) Usage() string     { return "vtodo mv [--list <list-name>] <from> <to>" }
func (c *MvCmd) NeedsStore() bool  { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	idx, err := parseItemArgs(args, 2)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := svc.MoveItem(c.listName, idx[0], idx[1]); err != nil {
		if errors.Is(err, service.ErrOutOfRange) {
			fmt.Fprintf(errOut, "error: item number out of range: %s %s\n", args[0], args[1])
			return exitcode.UserError
		}
		return reportErr(errOut, svc, c.listName, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
