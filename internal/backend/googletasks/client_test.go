package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/config"
	"vtodo/internal/service"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "L1", "title": "My Tasks"})
	})
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{
			map[string]any{"id": "L2", "title": "Groceries"},
			map[string]any{"id": "L1", "title": "My Tasks"},
		}})
	})
	mux.HandleFunc("/tasks/v1/lists/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/tasks/v1/lists/L1/"):
			if r.URL.Query().Get("pageToken") == "" {
				writeJSON(w, map[string]any{
					"items": []any{
						map[string]any{"id": "t1", "title": "buy milk", "status": "needsAction"},
						map[string]any{"id": "t2", "title": "old", "status": "completed", "hidden": true},
					},
					"nextPageToken": "p2",
				})
				return
			}
			writeJSON(w, map[string]any{"items": []any{
				map[string]any{"id": "t3", "title": "call mom", "status": "completed"},
			}})
		case strings.HasPrefix(r.URL.Path, "/tasks/v1/lists/L2/"):
			writeJSON(w, map[string]any{"items": []any{
				map[string]any{"id": "t4", "title": "eggs", "status": "needsAction"},
			}})
		default:
			http.NotFound(w, r)
		}
	})
	return httptest.NewServer(mux)
}

func TestFetchLists(t *testing.T) {
	ts := fakeAPI(t)
	defer ts.Close()

	c, err := NewWithHTTPClient(context.Background(), ts.Client(), ts.URL+"/")
	require.NoError(t, err)

	lists, err := c.FetchLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []service.NamedList{
		{Name: "Personal", Items: []service.Item{{Text: "buy milk"}, {Text: "call mom", Done: true}}},
		{Name: "Groceries", Items: []service.Item{{Text: "eggs"}}},
	}, lists)
}

func TestFetchListsAuthError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
	}))
	defer ts.Close()

	c, err := NewWithHTTPClient(context.Background(), ts.Client(), ts.URL+"/")
	require.NoError(t, err)

	_, err = c.FetchLists(context.Background())
	assert.True(t, errors.Is(err, ErrAuth), "got %v", err)
}

func TestNewWithoutCredentials(t *testing.T) {
	_, err := New(context.Background(), &config.Config{Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrAuth)
}
