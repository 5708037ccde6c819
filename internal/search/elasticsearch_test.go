package search

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

	"hotelier/internal/config"
	"hotelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQueryMatchAll(t *testing.T) {
	q := buildSearchQuery(models.RoomFilter{})
	assert.Contains(t, q, "match_all")
}

func TestBuildSearchQueryCombinesTextAndFilters(t *testing.T) {
	q := buildSearchQuery(models.RoomFilter{Query: "sea view", Type: "suite", MinCapacity: 3, MaxPrice: 900_000})

	boolQuery := q["bool"].(map[string]interface{})
	must := boolQuery["must"].([]map[string]interface{})
	filters := boolQuery["filter"].([]map[string]interface{})

	require.Len(t, must, 1)
	assert.Equal(t, "sea view", must[0]["multi_match"].(map[string]interface{})["query"])
	assert.Len(t, filters, 3)
}

func TestBuildSearchRequestPaging(t *testing.T) {
	req := buildSearchRequest(models.RoomFilter{Page: 3, PageSize: 10})
	assert.Equal(t, 20, req["from"])
	assert.Equal(t, 10, req["size"])

	req = buildSearchRequest(models.RoomFilter{})
	assert.Equal(t, 0, req["from"])
	assert.Equal(t, 20, req["size"])
}

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/rooms":
		w.WriteHeader(http.StatusOK)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_source":{"id":7}},{"_source":{"id":3}}]}}`)
	case r.URL.Path == "/_bulk":
		_, _ = io.WriteString(w, `{"errors":false,"items":[]}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func newTestIndex(t *testing.T) (*RoomIndex, *fakeCluster) {
	t.Helper()
	cluster := &fakeCluster{}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	index, err := NewRoomIndex(config.ElasticsearchConfig{URL: srv.URL, Index: "rooms", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return index, cluster
}

func TestSearchRoomsReturnsIdsInHitOrder(t *testing.T) {
	index, cluster := newTestIndex(t)

	ids, err := index.SearchRooms(context.Background(), models.RoomFilter{Query: "balcony"})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, ids)

	last := cluster.bodies[len(cluster.bodies)-1]
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(last), &sent))
	assert.Contains(t, sent, "query")
}

func TestIndexRoomsUsesBulk(t *testing.T) {
	index, cluster := newTestIndex(t)
	desc := "Corner room"

	err := index.IndexRooms(context.Background(), []models.Room{
		{ID: 1, Number: "101", Type: "double", Price: 100, Capacity: 2, Description: &desc},
		{ID: 2, Number: "102", Type: "suite", Price: 300, Capacity: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, "POST /_bulk", cluster.requests[len(cluster.requests)-1])
	lines := strings.Split(strings.TrimSpace(cluster.bodies[len(cluster.bodies)-1]), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Corner room")
}
