package hf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eisonai/devkit/internal/domain"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestModelFiles(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{
		"id": "mlc-ai/m",
		"siblings": [
			{"rfilename": "mlc-chat-config.json"},
			{"rfilename": ""},
			{"other": 1},
			"junk",
			{"rfilename": "params/shard_0.bin"}
		]
	}`)

	files, err := NewClient(Options{BaseURL: srv.URL}).ModelFiles(context.Background(), "mlc-ai/m")
	require.NoError(t, err)
	assert.Equal(t, []string{"mlc-chat-config.json", "params/shard_0.bin"}, files)
	assert.Equal(t, "/api/models/mlc-ai/m", seen.URL.Path)
	assert.Equal(t, DefaultUserAgent, seen.Header.Get("User-Agent"))
}

func TestModelFiles_MissingSiblings(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"id": "x"}`)

	files, err := NewClient(Options{BaseURL: srv.URL}).ModelFiles(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestModelFiles_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusNotFound, `{"error": "Repository not found"}`},
		{"bad json", http.StatusOK, `not json`},
		{"siblings not a list", http.StatusOK, `{"siblings": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			_, err := NewClient(Options{BaseURL: srv.URL}).ModelFiles(context.Background(), "x")
			assert.ErrorIs(t, err, domain.ErrAPIResponse)
		})
	}
}

func TestResolveURL(t *testing.T) {
	c := NewClient(Options{BaseURL: "https://hub.example/"})
	assert.Equal(t,
		"https://hub.example/mlc-ai/m/resolve/main/params/shard%200%3F.bin",
		c.ResolveURL("mlc-ai/m", "params/shard 0?.bin"))
}
