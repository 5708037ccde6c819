package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"hotelier/internal/config"
	"hotelier/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// RoomIndex keeps a searchable copy of the room catalog in Elasticsearch.
// PostgreSQL stays the source of truth; documents only carry what search needs.
type RoomIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

type roomDocument struct {
	ID          int64             `json:"id"`
	Number      string            `json:"number"`
	Type        string            `json:"type"`
	Price       int64             `json:"price"`
	Capacity    int               `json:"capacity"`
	Status      models.RoomStatus `json:"status"`
	Description string            `json:"description,omitempty"`
	Amenities   []string          `json:"amenities"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func documentOf(room *models.Room) roomDocument {
	doc := roomDocument{
		ID:        room.ID,
		Number:    room.Number,
		Type:      room.Type,
		Price:     room.Price,
		Capacity:  room.Capacity,
		Status:    room.Status,
		Amenities: room.Amenities,
		UpdatedAt: room.UpdatedAt,
	}
	if room.Description != nil {
		doc.Description = *room.Description
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	return doc
}

// NewRoomIndex creates the client and the index if it does not exist yet.
func NewRoomIndex(cfg config.ElasticsearchConfig) (*RoomIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	index := &RoomIndex{client: es, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := index.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return index, nil
}

var indexMapping = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 0,
		"analysis": map[string]interface{}{
			"analyzer": map[string]interface{}{
				"room_text": map[string]interface{}{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "english_stop", "english_stemmer"},
				},
			},
			"filter": map[string]interface{}{
				"english_stop": map[string]interface{}{
					"type":      "stop",
					"stopwords": "_english_",
				},
				"english_stemmer": map[string]interface{}{
					"type":     "stemmer",
					"language": "english",
				},
			},
		},
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "long"},
			"number":      map[string]interface{}{"type": "keyword"},
			"type":        map[string]interface{}{"type": "keyword"},
			"price":       map[string]interface{}{"type": "long"},
			"capacity":    map[string]interface{}{"type": "integer"},
			"status":      map[string]interface{}{"type": "keyword"},
			"description": map[string]interface{}{"type": "text", "analyzer": "room_text"},
			"amenities": map[string]interface{}{
				"type":     "text",
				"analyzer": "room_text",
				"fields": map[string]interface{}{
					"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 128},
				},
			},
			"updated_at": map[string]interface{}{"type": "date"},
		},
	},
}

func (c *RoomIndex) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// SearchRooms returns matching room ids, most relevant first.
func (c *RoomIndex) SearchRooms(ctx context.Context, filter models.RoomFilter) ([]int64, error) {
	body, err := json.Marshal(buildSearchRequest(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		ids[i] = hit.Source.ID
	}
	return ids, nil
}

func buildSearchRequest(filter models.RoomFilter) map[string]interface{} {
	page, pageSize := filter.Page, filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	from := 0
	if page > 1 {
		from = (page - 1) * pageSize
	}

	return map[string]interface{}{
		"query": buildSearchQuery(filter),
		"sort":  buildSortQuery(filter.Query),
		"from":  from,
		"size":  pageSize,
	}
}

func buildSearchQuery(filter models.RoomFilter) map[string]interface{} {
	must := []map[string]interface{}{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q,
				"fields":    []string{"description^2", "amenities", "type", "number"},
				"fuzziness": "AUTO",
			},
		})
	}

	var filters []map[string]interface{}
	if filter.Type != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"type": filter.Type}})
	}
	if filter.Status != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"status": filter.Status}})
	}
	if filter.MinCapacity > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"capacity": map[string]interface{}{"gte": filter.MinCapacity}},
		})
	}
	if filter.MaxPrice > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": map[string]interface{}{"lte": filter.MaxPrice}},
		})
	}

	if len(must) == 0 && len(filters) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	return map[string]interface{}{"bool": boolQuery}
}

func buildSortQuery(query string) []map[string]interface{} {
	if strings.TrimSpace(query) != "" {
		return []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"id": map[string]interface{}{"order": "asc"}},
		}
	}
	return []map[string]interface{}{
		{"id": map[string]interface{}{"order": "asc"}},
	}
}

// IndexRoom upserts one room document.
func (c *RoomIndex) IndexRoom(ctx context.Context, room *models.Room) error {
	docJSON, err := json.Marshal(documentOf(room))
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(room.ID, 10),
		Body:       bytes.NewReader(docJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

// IndexRooms writes rooms with a single bulk request.
func (c *RoomIndex) IndexRooms(ctx context.Context, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range rooms {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": c.config.Index, "_id": strconv.FormatInt(rooms[i].ID, 10)},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(documentOf(&rooms[i])); err != nil {
			return fmt.Errorf("failed to encode room %d: %w", rooms[i].ID, err)
		}
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to execute bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}

	var response struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if response.Errors {
		return fmt.Errorf("bulk index reported item failures")
	}
	return nil
}

func (c *RoomIndex) DeleteRoom(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *RoomIndex) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}
	return nil
}
