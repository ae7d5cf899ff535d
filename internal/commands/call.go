package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/logging"
	"vtodo/internal/service"
	"vtodo/internal/transport"
	"vtodo/internal/transport/httprpc"
)

func init() {
	Register(&CallCmd{})
}

// CallCmd implements the call command. It sends one procedure call to a
// running server, or with --local runs it against the local store.
type CallCmd struct {
	local bool
	url   string
	token string
}

// SetLocal selects the in-process dispatcher (for testing).
func (c *CallCmd) SetLocal(local bool) { c.local = local }

// SetURL sets the server URL (for testing).
func (c *CallCmd) SetURL(url string) { c.url = url }

// SetToken sets the bearer token (for testing).
func (c *CallCmd) SetToken(token string) { c.token = token }

func (c *CallCmd) Name() string      { return "call" }
func (c *CallCmd) Aliases() []string { return nil }
func (c *CallCmd) Synopsis() string  { return "Invoke a remote procedure" }
func (c *CallCmd) Usage() string {
	return "vtodo call [--local] [--url <url>] [--token <token>] <procedure> [payload]"
}
func (c *CallCmd) NeedsStore() bool { return c.local }

func (c *CallCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.local, "local", false, "")
	fs.StringVar(&c.url, "url", "", "")
	fs.StringVar(&c.token, "token", "", "")
}

func (c *CallCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: procedure required")
		return exitcode.UserError
	}
	procedure := args[0]
	payload := strings.Join(args[1:], " ")

	var (
		result string
		err    error
	)
	if c.local {
		result, err = c.callLocal(ctx, svc, procedure, payload)
	} else {
		result, err = c.callRemote(ctx, cfg, procedure, payload)
	}
	if err != nil {
		return reportCallErr(errOut, procedure, err)
	}

	fmt.Fprintln(out, result)
	if isFailure(result) {
		return exitcode.UserError
	}
	return exitcode.Success
}

func (c *CallCmd) callLocal(ctx context.Context, svc service.Service, procedure, payload string) (string, error) {
	reg, err := newProcedureRegistry(svc, logging.Discard(), nil)
	if err != nil {
		return "", err
	}
	return reg.Invoke(ctx, procedure, payload)
}

func (c *CallCmd) callRemote(ctx context.Context, cfg *config.Config, procedure, payload string) (string, error) {
	url := cfg.Settings.Client.URL
	if c.url != "" {
		url = c.url
	}
	token := cfg.Settings.Client.Token
	if c.token != "" {
		token = c.token
	}
	return httprpc.NewClient(url, httprpc.StaticToken(token)).Call(ctx, procedure, payload)
}

func reportCallErr(errOut io.Writer, procedure string, err error) int {
	var serr *httprpc.StatusError
	switch {
	case errors.Is(err, transport.ErrUnknownProcedure):
		fmt.Fprintf(errOut, "error: unknown procedure: %s\n", procedure)
		return exitcode.UserError
	case errors.As(err, &serr) && serr.Code == http.StatusNotFound:
		fmt.Fprintf(errOut, "error: unknown procedure: %s\n", procedure)
		return exitcode.UserError
	case errors.As(err, &serr) && serr.Code == http.StatusUnauthorized:
		fmt.Fprintln(errOut, "error: auth error: server rejected token")
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: transport error: %v\n", err)
		return exitcode.TransportError
	}
}

// isFailure reports whether result is a {"success":false,...} object.
func isFailure(result string) bool {
	var probe struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(result), &probe); err != nil {
		return false
	}
	return probe.Success != nil && !*probe.Success
}
