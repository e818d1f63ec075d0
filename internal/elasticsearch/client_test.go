package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

// fakeCluster answers the handful of endpoints the client uses.
type fakeCluster struct {
	mu          sync.Mutex
	indexExists bool
	created     bool
	docs        map[string]json.RawMessage
	lastSearch  string
	refreshes   []string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	path := r.URL.Path

	switch {
	case path == "/" && r.Method == http.MethodGet:
		io.WriteString(w, `{"version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case path == "/tasks" && r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case path == "/tasks" && r.Method == http.MethodPut:
		f.created = true
		f.indexExists = true
		io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasPrefix(path, "/tasks/_doc/"):
		id := strings.TrimPrefix(path, "/tasks/_doc/")
		f.refreshes = append(f.refreshes, r.URL.Query().Get("refresh"))
		if r.Method == http.MethodDelete {
			if _, ok := f.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, `{"result":"not_found"}`)
				return
			}
			delete(f.docs, id)
			io.WriteString(w, `{"result":"deleted"}`)
			return
		}
		f.docs[id] = body
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)
	case path == "/tasks/_search":
		f.lastSearch = string(body)
		hits := make([]map[string]json.RawMessage, 0, len(f.docs))
		for _, doc := range f.docs {
			hits = append(hits, map[string]json.RawMessage{"_source": doc})
		}
		json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{}`)
	}
}

func newTestClient(t *testing.T, cluster *fakeCluster) *Client {
	t.Helper()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	c, err := NewClient([]string{srv.URL}, "tasks", logging.Discard())
	require.NoError(t, err)
	return c
}

func TestNewClientCreatesMissingIndex(t *testing.T) {
	cluster := &fakeCluster{docs: map[string]json.RawMessage{}}
	newTestClient(t, cluster)

	assert.True(t, cluster.created)
}

func TestNewClientKeepsExistingIndex(t *testing.T) {
	cluster := &fakeCluster{indexExists: true, docs: map[string]json.RawMessage{}}
	newTestClient(t, cluster)

	assert.False(t, cluster.created)
}

func TestIndexSearchDelete(t *testing.T) {
	cluster := &fakeCluster{docs: map[string]json.RawMessage{}}
	c := newTestClient(t, cluster)
	ctx := context.Background()

	task := &models.Task{
		Id:          3,
		Title:       "Buy milk",
		Description: "2 liters",
		UserId:      7,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.IndexTask(ctx, task))
	require.Contains(t, cluster.docs, "3")

	found, err := c.Search(ctx, 7, "milk")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Buy milk", found[0].Title)
	assert.Equal(t, int64(7), found[0].UserId)
	assert.Contains(t, cluster.lastSearch, `"userId":7`)
	assert.Contains(t, cluster.lastSearch, `"milk"`)

	var searchBody struct {
		Size int `json:"size"`
	}
	require.NoError(t, json.Unmarshal([]byte(cluster.lastSearch), &searchBody))
	assert.Equal(t, maxSearchResults, searchBody.Size)

	require.NoError(t, c.DeleteTask(ctx, 3))
	assert.NotContains(t, cluster.docs, "3")

	// deleting a document that is not indexed is not an error
	require.NoError(t, c.DeleteTask(ctx, 3))

	// writes are visible to the next search
	assert.Equal(t, []string{"wait_for", "wait_for", "wait_for"}, cluster.refreshes)
}
