package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/output"
	"vtodo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles `vtodo` (no args), `vtodo list [<list-name>]` and `vtodo list --all`.
type ListCmd struct {
	listName string
	all      bool
}

// SetListName sets the list name (for testing).
func (c *ListCmd) SetListName(name string) { c.listName = name }

// SetAll selects every list (for testing).
func (c *ListCmd) SetAll(all bool) { c.all = all }

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List items" }
func (c *ListCmd) Usage() string     { return "vtodo list [--all] [--list <list-name>] [<list-name>]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.all {
		return c.listAll(cfg, svc, out)
	}

	name := c.listName
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}
	names := svc.ListNames()
	if name == "" {
		name = names.Current
	}
	if code, ok := requireList(errOut, svc, name); !ok {
		return code
	}
	name = service.NormalizeName(name)

	items := svc.ListItems(name)
	output.FormatListHeader(out, name, name == names.Current)
	for i, it := range items {
		output.FormatItem(out, i+1, it)
	}
	if len(items) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no items")
	}
	return exitcode.Success
}

// listAll prints every list in creation order.
func (c *ListCmd) listAll(cfg *config.Config, svc service.Service, out io.Writer) int {
	snap := svc.Snapshot()
	for _, l := range snap.Lists {
		output.FormatListHeader(out, l.Name, l.Name == snap.Active)
		for i, it := range l.Items {
			output.FormatItem(out, i+1, it)
		}
		if len(l.Items) == 0 && !cfg.Quiet {
			fmt.Fprintln(out, "no items")
		}
	}
	return exitcode.Success
}
