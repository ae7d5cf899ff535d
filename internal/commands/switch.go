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
	Register(&SwitchCmd{})
}

// SwitchCmd implements the switch command.
type SwitchCmd struct{}

func (c *SwitchCmd) Name() string      { return "switch" }
func (c *SwitchCmd) Aliases() []string { return []string{"use"} }
func (c *SwitchCmd) Synopsis() string  { return "Make a list active" }
func (c *SwitchCmd) Usage() string     { return "vtodo switch <list-name>" }
func (c *SwitchCmd) NeedsStore() bool  { return true }

func (c *SwitchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SwitchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	if err := svc.SwitchActiveList(name); err != nil {
		return reportErr(errOut, svc, name, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
