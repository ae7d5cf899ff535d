package httprpc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// StatusError is a non-200 answer from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Client calls procedures on a Server.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient returns a client for the server at baseURL. When ts is non-nil,
// every request carries its token as a bearer credential.
func NewClient(baseURL string, ts oauth2.TokenSource) *Client {
	hc := http.DefaultClient
	if ts != nil {
		hc = oauth2.NewClient(context.Background(), ts)
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// StaticToken wraps a fixed bearer token as a TokenSource.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Call invokes procedure with payload and returns the result body.
func (c *Client) Call(ctx context.Context, procedure, payload string) (string, error) {
	endpoint := c.base + "/rpc/" + url.PathEscape(procedure)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return string(body), nil
}
