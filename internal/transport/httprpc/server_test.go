package httprpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/metrics"
	"vtodo/internal/transport"
)

func newRegistry(t *testing.T) *transport.Registry {
	t.Helper()
	r := transport.NewRegistry()
	require.NoError(t, r.RegisterProcedure("echo", func(ctx context.Context, payload string) (string, error) {
		return "got:" + payload, nil
	}))
	require.NoError(t, r.RegisterProcedure("broken", func(ctx context.Context, payload string) (string, error) {
		return "", errors.New("boom")
	}))
	return r
}

func post(t *testing.T, h http.Handler, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServerCall(t *testing.T) {
	s := NewServer(newRegistry(t), Config{})
	rec := post(t, s.Handler(), "/rpc/echo", "", `{"task":"buy milk"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `got:{"task":"buy milk"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestServerUnknownProcedure(t *testing.T) {
	s := NewServer(newRegistry(t), Config{})
	rec := post(t, s.Handler(), "/rpc/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerHandlerError(t *testing.T) {
	s := NewServer(newRegistry(t), Config{})
	rec := post(t, s.Handler(), "/rpc/broken", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerAuth(t *testing.T) {
	s := NewServer(newRegistry(t), Config{Tokens: []string{"secret"}})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "guess", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s.Handler(), "/rpc/echo", tt.token, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServerRateLimit(t *testing.T) {
	m := metrics.New()
	s := NewServer(newRegistry(t), Config{RateLimitRPS: 1, RateLimitBurst: 2}, WithMetrics(m))
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, http.StatusOK, post(t, s.Handler(), "/rpc/echo", "", "").Code)
	assert.Equal(t, http.StatusOK, post(t, s.Handler(), "/rpc/echo", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(t, s.Handler(), "/rpc/echo", "", "").Code)
}

func TestServerBodyLimit(t *testing.T) {
	s := NewServer(newRegistry(t), Config{})
	rec := post(t, s.Handler(), "/rpc/echo", "", strings.Repeat("x", MaxBodyBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServerHealthAndMetrics(t *testing.T) {
	s := NewServer(newRegistry(t), Config{}, WithMetrics(metrics.New()))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestClientRoundTrip(t *testing.T) {
	s := NewServer(newRegistry(t), Config{Tokens: []string{"secret"}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := NewClient(ts.URL+"/", StaticToken("secret"))
	got, err := c.Call(context.Background(), "echo", "hi")
	require.NoError(t, err)
	assert.Equal(t, "got:hi", got)

	_, err = NewClient(ts.URL, nil).Call(context.Background(), "echo", "hi")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusUnauthorized, serr.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := NewServer(newRegistry(t), Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/rpc/echo", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ip:10.0.0.1", callerKey(req, ""))
	assert.Equal(t, "token:abc", callerKey(req, "abc"))
}
