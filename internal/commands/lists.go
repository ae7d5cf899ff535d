package commands

import (
	"context"
	"flag"
	"io"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/output"
	"vtodo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Show all lists" }
func (c *ListsCmd) Usage() string     { return "vtodo lists" }
func (c *ListsCmd) NeedsStore() bool  { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	names := svc.ListNames()
	for _, name := range names.Lists {
		output.FormatListName(out, name, name == names.Current)
	}
	return exitcode.Success
}
