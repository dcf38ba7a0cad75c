package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *api.Client) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, api.NewClient(srv.URL, "test-key")
}

// fakeBackend serves the list, schema, distinct and health endpoints.
type fakeBackend struct {
	mu       sync.Mutex
	regions  []map[string]any
	projects []map[string]any
	schema   []map[string]any
	distinct []string
	fail     map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		regions: []map[string]any{
			{"region_code": "us-east-1", "name": "N. Virginia"},
			{"region_code": "ap-northeast-2", "name": "Seoul"},
		},
		projects: []map[string]any{
			{"project_id": "project-1", "name": "web"},
		},
		schema: []map[string]any{{
			"title": "Properties",
			"items": []map[string]any{
				{"key": "state", "name": "State", "enums": []string{"ACTIVE", "DELETED"}},
				{"key": "region_code", "name": "Region", "reference": "inventory.Region"},
				{"key": "name", "name": "Name", "data_type": "string"},
			},
		}},
		distinct: []string{"web-1", "web-2"},
		fail:     map[string]int{},
	}
}

func (f *fakeBackend) setRegions(regions ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regions = regions
}

func (f *fakeBackend) failPath(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[path] = status
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status, ok := f.fail[r.URL.Path]; ok {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": "FAILED", "message": "backend failed"}})
		return
	}
	switch r.URL.Path {
	case "/inventory/region/list":
		json.NewEncoder(w).Encode(map[string]any{"results": f.regions})
	case "/identity/project/list":
		json.NewEncoder(w).Encode(map[string]any{"results": f.projects})
	case "/api/schema/search":
		json.NewEncoder(w).Encode(map[string]any{"data": f.schema})
	case "/api/stat/distinct":
		json.NewEncoder(w).Encode(map[string]any{"results": f.distinct})
	case "/api/health":
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	case "/api/keys/login":
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"api_key": "cc_fresh", "username": "alxx"}})
	default:
		http.NotFound(w, r)
	}
}

func testStore(t *testing.T, client *api.Client) *reference.Store {
	t.Helper()
	store, err := reference.NewStore(client, nil, reference.Options{}, reference.KindRegion, reference.KindProject)
	require.NoError(t, err)
	return store
}

// runCmd executes cmd and any batched children, collecting the messages.
// Commands that block (like the notifier wait) are abandoned after a
// short grace period.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(500 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
