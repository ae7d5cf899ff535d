package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

func init() {
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a list and switch to it" }
func (c *CreateListCmd) Usage() string     { return "vtodo createlist <list-name>" }
func (c *CreateListCmd) NeedsStore() bool  { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	created, err := svc.CreateList(name)
	if err != nil {
		return reportErr(errOut, svc, name, err)
	}

	if !cfg.Quiet {
		if created {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintf(out, "list already exists: %s\n", service.NormalizeName(name))
		}
	}
	return exitcode.Success
}
