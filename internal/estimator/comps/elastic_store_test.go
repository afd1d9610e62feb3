// internal/estimator/comps/elastic_store_test.go
package comps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestElastic(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// go-elasticsearch v8 verifies it is talking to a real cluster.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticStore_Query(t *testing.T) {
	var capturedBody map[string]interface{}

	client := newTestElastic(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &capturedBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {"hits": [
				{"_source": {
					"address": "100 Main St", "price": 1250, "bedrooms": 3,
					"bathrooms": 2.0, "sqft": 1400,
					"location": {"lat": 41.49, "lon": -81.70},
					"listed_at": "2025-06-01T12:00:00Z"
				}},
				{"_source": {
					"address": "200 Oak Ave", "price": 1100, "bedrooms": 2,
					"location": {"lat": 41.50, "lon": -81.69},
					"listed_at": "2025-06-02T09:30:00Z"
				}}
			]}
		}`))
	})

	store := NewElasticStore(client, "rental_listings")
	records, err := store.Query(context.Background(), QueryParams{
		BedroomsMin:  2,
		BedroomsMax:  4,
		PriceMax:     10000,
		LookbackDays: 90,
		Latitude:     41.4993,
		Longitude:    -81.6944,
		RadiusMiles:  2.0,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "100 Main St", records[0].Address)
	assert.Equal(t, 1250.0, records[0].Price)
	assert.Equal(t, 41.49, records[0].Latitude)
	assert.Nil(t, records[1].Bathrooms)

	// The request carried the geo pre-filter alongside the range filters.
	require.NotNil(t, capturedBody)
	query := capturedBody["query"].(map[string]interface{})
	boolQ := query["bool"].(map[string]interface{})
	filters := boolQ["filter"].([]interface{})
	assert.Len(t, filters, 4)
}

func TestElasticStore_SearchError(t *testing.T) {
	client := newTestElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"reason": "boom"}}`))
	})

	store := NewElasticStore(client, "rental_listings")
	_, err := store.Query(context.Background(), QueryParams{
		BedroomsMin: 2, BedroomsMax: 4, PriceMax: 10000, LookbackDays: 90,
	})
	assert.Error(t, err)
}
