package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	output string
}

// SetFormat sets the output format (for testing).
func (c *ExportCmd) SetFormat(format string) { c.format = format }

// SetOutput sets the output file (for testing).
func (c *ExportCmd) SetOutput(path string) { c.output = path }

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write all lists as JSON or YAML" }
func (c *ExportCmd) Usage() string {
	return "vtodo export [--format json|yaml] [--output <file>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	body, err := encodeSnapshot(svc.Snapshot(), c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if c.output == "" {
		out.Write(body)
		return exitcode.Success
	}
	if err := os.WriteFile(c.output, body, 0o600); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func encodeSnapshot(snap service.Snapshot, format string) ([]byte, error) {
	switch format {
	case "", "json":
		body, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(body, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(snap)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
