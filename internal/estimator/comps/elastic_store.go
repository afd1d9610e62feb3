// internal/estimator/comps/elastic_store.go
package comps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rent-estimator/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// maxCandidates caps one search page; the matcher trims to max_comps anyway.
const maxCandidates = 1000

// ElasticStore reads candidates from a rental listings search index. The
// geo_distance filter narrows the page server-side; the matcher still owns
// the authoritative distance cut.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticStore(client *elasticsearch.Client, index string) *ElasticStore {
	return &ElasticStore{client: client, index: index}
}

func (s *ElasticStore) Query(ctx context.Context, params QueryParams) ([]models.ComparableRecord, error) {
	filters := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"price": map[string]interface{}{"gt": params.PriceMin, "lt": params.PriceMax},
			},
		},
		map[string]interface{}{
			"range": map[string]interface{}{
				"bedrooms": map[string]interface{}{"gte": params.BedroomsMin, "lte": params.BedroomsMax},
			},
		},
		map[string]interface{}{
			"range": map[string]interface{}{
				"listed_at": map[string]interface{}{"gte": fmt.Sprintf("now-%dd", params.LookbackDays)},
			},
		},
	}

	if params.RadiusMiles > 0 {
		filters = append(filters, map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%.2fmi", params.RadiusMiles),
				"location": map[string]interface{}{
					"lat": params.Latitude,
					"lon": params.Longitude,
				},
			},
		})
	}

	queryBody := map[string]interface{}{
		"size": maxCandidates,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filters,
			},
		},
	}

	body, _ := json.Marshal(queryBody)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source listingDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	records := make([]models.ComparableRecord, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		records = append(records, hit.Source.toRecord())
	}

	return records, nil
}

// listingDoc mirrors the index mapping of a rental listing document.
type listingDoc struct {
	Address   string   `json:"address"`
	Price     float64  `json:"price"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms *float64 `json:"bathrooms"`
	Sqft      *int     `json:"sqft"`
	YearBuilt *int     `json:"year_built"`
	Location  struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	ListedAt time.Time `json:"listed_at"`
}

func (d listingDoc) toRecord() models.ComparableRecord {
	return models.ComparableRecord{
		Address:   d.Address,
		Price:     d.Price,
		Bedrooms:  d.Bedrooms,
		Bathrooms: d.Bathrooms,
		Sqft:      d.Sqft,
		YearBuilt: d.YearBuilt,
		Latitude:  d.Location.Lat,
		Longitude: d.Location.Lon,
		ListedAt:  d.ListedAt,
	}
}
