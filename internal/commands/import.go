package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/persist"
	"vtodo/internal/service"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command. It merges lists from a file
// written by export (JSON or YAML) or from a raw lists object as stored
// under the voiceTodoLists key.
type ImportCmd struct{}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Merge lists from a file" }
func (c *ImportCmd) Usage() string     { return "vtodo import <file>" }
func (c *ImportCmd) NeedsStore() bool  { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: file required")
		return exitcode.UserError
	}
	body, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	lists, err := decodeImport(filepath.Ext(args[0]), body)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid import file: %v\n", err)
		return exitcode.UserError
	}

	n, err := svc.Merge(lists)
	if err != nil {
		return reportErr(errOut, svc, "", err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d items\n", n)
	}
	return exitcode.Success
}

func decodeImport(ext string, body []byte) ([]service.NamedList, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var snap service.Snapshot
		if err := yaml.Unmarshal(body, &snap); err != nil {
			return nil, err
		}
		return snap.Lists, nil
	}

	// An export has both "lists" and "active"; anything else is read as a
	// raw lists object.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}
	_, hasLists := probe["lists"]
	_, hasActive := probe["active"]
	if hasLists && hasActive {
		var snap service.Snapshot
		if err := json.Unmarshal(body, &snap); err != nil {
			return nil, err
		}
		return snap.Lists, nil
	}
	return persist.DecodeLists(body)
}
