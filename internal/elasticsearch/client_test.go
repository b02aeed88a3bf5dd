package elasticsearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/elasticsearch"
	"github.com/metrix-hq/metrix/web/internal/models"
)

// fakeES mimics the handful of endpoints the client uses.
type fakeES struct {
	mu      sync.Mutex
	docs    map[string]models.Subscriber
	indexed bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/subscribers":
		if !f.indexed {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/subscribers":
		f.indexed = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case strings.HasPrefix(r.URL.Path, "/subscribers/_create/"):
		id := strings.TrimPrefix(r.URL.Path, "/subscribers/_create/")
		if _, ok := f.docs[id]; ok {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"type":"version_conflict_engine_exception"}}`))
			return
		}
		var sub models.Subscriber
		_ = json.NewDecoder(r.Body).Decode(&sub)
		f.docs[id] = sub
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.URL.Path == "/subscribers/_count":
		_ = json.NewEncoder(w).Encode(map[string]int{"count": len(f.docs)})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func newClient(t *testing.T) (*elasticsearch.Client, *fakeES) {
	t.Helper()
	fake := &fakeES{docs: map[string]models.Subscriber{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := elasticsearch.New(srv.URL, "subscribers", nil)
	require.NoError(t, err)
	return c, fake
}

func TestEnsureIndexCreatesOnce(t *testing.T) {
	c, fake := newClient(t)
	require.NoError(t, c.EnsureIndex(context.Background()))
	require.True(t, fake.indexed)
	require.NoError(t, c.EnsureIndex(context.Background()))
}

func TestIndexSubscriberConflict(t *testing.T) {
	c, _ := newClient(t)
	sub := models.Subscriber{ID: "abc", Email: "fan@example.com", Source: "landing", SubscribedAt: time.Now().UTC()}

	require.NoError(t, c.IndexSubscriber(context.Background(), sub))
	require.ErrorIs(t, c.IndexSubscriber(context.Background(), sub), elasticsearch.ErrAlreadySubscribed)

	n, err := c.CountSubscribers(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
