// internal/sources/scholarship.go
package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"scholarship-engine/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultScholarshipIndex = "scholarships"
	maxCatalogueSize        = 500
)

// ScholarshipSource loads scholarship criteria from the catalogue.
type ScholarshipSource interface {
	GetScholarship(ctx context.Context, id string) (*models.Scholarship, error)
	GetScholarships(ctx context.Context, ids []string) ([]models.Scholarship, error)
	ActiveScholarships(ctx context.Context) ([]models.Scholarship, error)
}

// ElasticsearchScholarshipSource reads scholarship documents from the catalogue index.
type ElasticsearchScholarshipSource struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchScholarshipSource(client *elasticsearch.Client, index string) *ElasticsearchScholarshipSource {
	if index == "" {
		index = DefaultScholarshipIndex
	}
	return &ElasticsearchScholarshipSource{client: client, index: index}
}

type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchScholarshipSource) GetScholarship(ctx context.Context, id string) (*models.Scholarship, error) {
	res, err := s.client.Get(s.index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get scholarship %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrScholarshipNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get scholarship %s: %s", id, res.String())
	}

	var doc getResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scholarship %s: %w", id, err)
	}
	if !doc.Found {
		return nil, fmt.Errorf("%w: %s", ErrScholarshipNotFound, id)
	}

	return decodeScholarship(doc.ID, doc.Source)
}

// GetScholarships fetches the given ids in one search and returns them in request
// order. A missing id is reported as ErrScholarshipNotFound.
func (s *ElasticsearchScholarshipSource) GetScholarships(ctx context.Context, ids []string) ([]models.Scholarship, error) {
	if len(ids) == 0 {
		return []models.Scholarship{}, nil
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"ids": map[string]interface{}{"values": ids},
		},
	}
	found, err := s.search(ctx, query, len(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Scholarship, len(found))
	for _, sch := range found {
		byID[sch.ID] = sch
	}

	result := make([]models.Scholarship, 0, len(ids))
	for _, id := range ids {
		sch, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrScholarshipNotFound, id)
		}
		result = append(result, sch)
	}
	return result, nil
}

// ActiveScholarships returns every catalogue entry flagged active.
func (s *ElasticsearchScholarshipSource) ActiveScholarships(ctx context.Context) ([]models.Scholarship, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_id": "asc"},
		},
	}
	return s.search(ctx, query, maxCatalogueSize)
}

func (s *ElasticsearchScholarshipSource) search(ctx context.Context, query map[string]interface{}, size int) ([]models.Scholarship, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode scholarship query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search scholarships: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search scholarships: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode scholarship search: %w", err)
	}

	scholarships := make([]models.Scholarship, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		sch, err := decodeScholarship(hit.ID, hit.Source)
		if err != nil {
			return nil, err
		}
		scholarships = append(scholarships, *sch)
	}
	return scholarships, nil
}

func decodeScholarship(id string, source json.RawMessage) (*models.Scholarship, error) {
	var sch models.Scholarship
	if err := json.Unmarshal(source, &sch); err != nil {
		return nil, fmt.Errorf("decode scholarship %s: %w", id, err)
	}
	if sch.ID == "" {
		sch.ID = id
	}
	return &sch, nil
}
