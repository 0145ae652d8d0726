// internal/sources/scholarship_test.go
package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCatalogue serves canned Elasticsearch responses. The product header is
// required by the v8 client.
func newTestCatalogue(t *testing.T, handler http.HandlerFunc) *ElasticsearchScholarshipSource {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewElasticsearchScholarshipSource(client, "scholarships-test")
}

const dostDocument = `{
	"name": "DOST Merit",
	"isActive": true,
	"eligibilityCriteria": {
		"maxGWA": 1.75,
		"eligibleColleges": ["CEAT"],
		"customConditions": [
			{"id": "c1", "name": "Org member", "fieldPath": "customFields.orgMember", "conditionType": "boolean", "operator": "is_true"}
		]
	}
}`

// ==========================
// Get by id
// ==========================

func TestGetScholarship(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scholarships-test/_doc/sch-dost", r.URL.Path)
		io.WriteString(w, `{"_index":"scholarships-test","_id":"sch-dost","found":true,"_source":`+dostDocument+`}`)
	})

	sch, err := src.GetScholarship(context.Background(), "sch-dost")

	require.NoError(t, err)
	assert.Equal(t, "sch-dost", sch.ID)
	assert.Equal(t, "DOST Merit", sch.Name)
	require.NotNil(t, sch.Criteria.MaxGWA)
	assert.Equal(t, 1.75, *sch.Criteria.MaxGWA)
	require.Len(t, sch.Criteria.CustomConditions, 1)
	assert.Equal(t, "customFields.orgMember", sch.Criteria.CustomConditions[0].FieldPath)
}

func TestGetScholarship_NotFound(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"_index":"scholarships-test","_id":"nope","found":false}`)
	})

	_, err := src.GetScholarship(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrScholarshipNotFound)
}

func TestGetScholarship_ServerError(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	})

	_, err := src.GetScholarship(context.Background(), "sch-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrScholarshipNotFound)
}

// ==========================
// Search
// ==========================

func TestGetScholarships_RequestOrder(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/_search"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		ids := body["query"].(map[string]interface{})["ids"].(map[string]interface{})["values"].([]interface{})
		assert.Len(t, ids, 2)

		io.WriteString(w, `{"hits":{"hits":[
			{"_id":"b","_source":{"name":"Second","isActive":true,"eligibilityCriteria":{}}},
			{"_id":"a","_source":{"name":"First","isActive":true,"eligibilityCriteria":{}}}
		]}}`)
	})

	got, err := src.GetScholarships(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "b", got[1].ID)
}

func TestGetScholarships_MissingID(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"hits":{"hits":[{"_id":"a","_source":{"name":"First"}}]}}`)
	})

	_, err := src.GetScholarships(context.Background(), []string{"a", "ghost"})
	assert.ErrorIs(t, err, ErrScholarshipNotFound)
}

func TestGetScholarships_Empty(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request %s", r.URL.Path)
	})

	got, err := src.GetScholarships(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActiveScholarships(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"isActive":true`)
		io.WriteString(w, `{"hits":{"hits":[{"_id":"sch-dost","_source":`+dostDocument+`}]}}`)
	})

	got, err := src.ActiveScholarships(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sch-dost", got[0].ID)
	assert.True(t, got[0].IsActive)
}

func TestActiveScholarships_BadDocument(t *testing.T) {
	src := newTestCatalogue(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"hits":{"hits":[{"_id":"x","_source":{"eligibilityCriteria":{"customConditions":[{"conditionType":"fuzzy"}]}}}]}}`)
	})

	_, err := src.ActiveScholarships(context.Background())
	assert.ErrorContains(t, err, "decode scholarship x")
}
