package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"vtodo/internal/backend/googletasks"
	"vtodo/internal/config"
	"vtodo/internal/exitcode"
	"vtodo/internal/service"
)

func init() {
	Register(&ImportGoogleCmd{})
}

// ListFetcher returns remote lists to merge.
type ListFetcher interface {
	FetchLists(ctx context.Context) ([]service.NamedList, error)
}

// FetcherFactory builds a ListFetcher from config.
type FetcherFactory func(ctx context.Context, cfg *config.Config) (ListFetcher, error)

// ImportGoogleCmd implements the import-google command.
type ImportGoogleCmd struct {
	factory FetcherFactory
}

// SetFactory replaces the Google Tasks client (for testing).
func (c *ImportGoogleCmd) SetFactory(f FetcherFactory) { c.factory = f }

func (c *ImportGoogleCmd) Name() string      { return "import-google" }
func (c *ImportGoogleCmd) Aliases() []string { return nil }
func (c *ImportGoogleCmd) Synopsis() string  { return "Merge lists from Google Tasks" }
func (c *ImportGoogleCmd) Usage() string     { return "vtodo import-google [common flags]" }
func (c *ImportGoogleCmd) NeedsStore() bool  { return true }

func (c *ImportGoogleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportGoogleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	factory := c.factory
	if factory == nil {
		if !cfg.HasOAuthClient() {
			fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n", cfg.Dir)
			return exitcode.AuthError
		}
		if !cfg.HasToken() {
			fmt.Fprintln(errOut, "error: not logged in (run: vtodo login)")
			return exitcode.AuthError
		}
		factory = func(ctx context.Context, cfg *config.Config) (ListFetcher, error) {
			return googletasks.New(ctx, cfg)
		}
	}

	fetcher, err := factory(ctx, cfg)
	if err != nil {
		return reportFetchErr(errOut, err)
	}
	lists, err := fetcher.FetchLists(ctx)
	if err != nil {
		return reportFetchErr(errOut, err)
	}

	n, err := svc.Merge(lists)
	if err != nil {
		return reportErr(errOut, svc, "", err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d items from %d lists\n", n, len(lists))
	}
	return exitcode.Success
}

func reportFetchErr(errOut io.Writer, err error) int {
	if errors.Is(err, googletasks.ErrAuth) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: google tasks: %v\n", err)
	return exitcode.TransportError
}
