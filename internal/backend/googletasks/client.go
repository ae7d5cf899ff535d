// Package googletasks reads task lists from the Google Tasks API so they can
// be merged into the local store.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"vtodo/internal/config"
	"vtodo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for each API page.
	APITimeout = 10 * time.Second

	// Scope is the OAuth scope requested by login. Import only reads.
	Scope = tasks.TasksReadonlyScope
)

// ErrAuth indicates a missing, expired or revoked token.
var ErrAuth = errors.New("token expired or revoked (run: vtodo login)")

// Client reads Google task lists.
type Client struct {
	svc *tasks.Service
}

// New creates a client from oauth_client.json and token.json in cfg.Dir.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json: %v", ErrAuth, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", ErrAuth, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: not logged in", ErrAuth)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %v", ErrAuth, err)
	}

	// Token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and endpoint
// (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// FetchLists returns every task list with its tasks, completed ones
// included and hidden or deleted ones left out. The default list is
// returned under the name Personal and comes first.
func (c *Client) FetchLists(ctx context.Context) ([]service.NamedList, error) {
	getCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(getCtx).Do()
	cancel()
	if err != nil {
		return nil, wrapError(err)
	}

	var lists []*tasks.TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		lists = append(lists, resp.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	result := make([]service.NamedList, 0, len(lists))
	for _, l := range lists {
		items, err := c.fetchItems(ctx, l.Id)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", l.Title, err)
		}
		if l.Id == defaultList.Id {
			result = append([]service.NamedList{{Name: service.DefaultList, Items: items}}, result...)
			continue
		}
		result = append(result, service.NamedList{Name: l.Title, Items: items})
	}
	return result, nil
}

func (c *Client) fetchItems(ctx context.Context, listID string) ([]service.Item, error) {
	call := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowDeleted(false).
		ShowHidden(false)

	items := []service.Item{}
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, t := range resp.Items {
			if t.Deleted || t.Hidden {
				continue
			}
			items = append(items, service.Item{Text: t.Title, Done: t.Status == "completed"})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return items, nil
}

// wrapError maps API errors to friendlier ones.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return ErrAuth
	}
	return err
}
