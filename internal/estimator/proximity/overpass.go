// internal/estimator/proximity/overpass.go
package proximity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	stderrors "rent-estimator/internal/common/errors"
	"rent-estimator/internal/common/http"
	"rent-estimator/internal/estimator/geo"
)

// poi categories recognized by the Overpass parser.
const (
	categorySchools     = "schools"
	categoryGrocery     = "grocery"
	categoryTransit     = "transit"
	categoryParks       = "parks"
	categoryRestaurants = "restaurants"
)

// poi is one point of interest with its distance from the subject.
type poi struct {
	Name          string  `json:"name"`
	DistanceMiles float64 `json:"distance_miles"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

type overpassElement struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// minRequestInterval throttles Overpass calls to at most 1/s, the public
// API's politeness floor. Cache hits never reach this.
const minRequestInterval = time.Second

// overpassClient fetches and categorizes POIs around a coordinate.
type overpassClient struct {
	endpoint     string
	radiusMeters int
	client       *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

func newOverpassClient(endpoint string, radiusMeters int, client *http.Client) *overpassClient {
	return &overpassClient{
		endpoint:     endpoint,
		radiusMeters: radiusMeters,
		client:       client,
	}
}

// throttle blocks until a request slot is available or ctx is done.
func (o *overpassClient) throttle(ctx context.Context) error {
	o.mu.Lock()
	now := time.Now()
	wait := o.lastRequest.Add(minRequestInterval).Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve the slot so concurrent callers queue behind it.
	o.lastRequest = now.Add(wait)
	o.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// buildQuery composes the Overpass QL statement covering all categories
// in a single round trip. Ways get "out center" so they carry a usable
// coordinate.
func (o *overpassClient) buildQuery(lat, lon float64) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", o.radiusMeters, lat, lon)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, selector := range []string{
		`node["amenity"="school"]`,
		`way["amenity"="school"]`,
		`node["shop"="supermarket"]`,
		`node["shop"="grocery"]`,
		`node["highway"="bus_stop"]`,
		`node["railway"="station"]`,
		`node["railway"="subway_entrance"]`,
		`node["leisure"="park"]`,
		`way["leisure"="park"]`,
		`node["amenity"="restaurant"]`,
		`node["amenity"="cafe"]`,
	} {
		b.WriteString(selector)
		b.WriteString(around)
		b.WriteString(";")
	}
	b.WriteString(");out center;")
	return b.String()
}

// nearbyPOIs runs the query and buckets results by category, each bucket
// sorted by distance ascending.
func (o *overpassClient) nearbyPOIs(ctx context.Context, lat, lon float64) (map[string][]poi, error) {
	if err := o.throttle(ctx); err != nil {
		return nil, stderrors.NewGISQueryFailedError(err)
	}

	form := url.Values{"data": {o.buildQuery(lat, lon)}}
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, o.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, stderrors.NewGISQueryFailedError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.DoWithRetry(ctx, req)
	if err != nil {
		return nil, stderrors.NewGISQueryFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, stderrors.NewGISQueryFailedError(
			fmt.Errorf("overpass returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stderrors.NewGISQueryFailedError(err)
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, stderrors.NewGISQueryFailedError(err)
	}

	pois := map[string][]poi{
		categorySchools:     {},
		categoryGrocery:     {},
		categoryTransit:     {},
		categoryParks:       {},
		categoryRestaurants: {},
	}

	for _, elem := range parsed.Elements {
		elemLat, elemLon, ok := elementCoords(elem)
		if !ok {
			continue
		}

		category := categorize(elem.Tags)
		if category == "" {
			continue
		}

		name := elem.Tags["name"]
		if name == "" {
			name = "Unknown"
		}

		pois[category] = append(pois[category], poi{
			Name:          name,
			DistanceMiles: geo.HaversineMiles(lat, lon, elemLat, elemLon),
			Lat:           elemLat,
			Lon:           elemLon,
		})
	}

	for category := range pois {
		sort.Slice(pois[category], func(i, j int) bool {
			return pois[category][i].DistanceMiles < pois[category][j].DistanceMiles
		})
	}

	return pois, nil
}

func elementCoords(elem overpassElement) (float64, float64, bool) {
	if elem.Lat != nil && elem.Lon != nil {
		return *elem.Lat, *elem.Lon, true
	}
	if elem.Center != nil {
		return elem.Center.Lat, elem.Center.Lon, true
	}
	return 0, 0, false
}

func categorize(tags map[string]string) string {
	switch {
	case tags["amenity"] == "school":
		return categorySchools
	case tags["shop"] == "supermarket" || tags["shop"] == "grocery":
		return categoryGrocery
	case tags["highway"] == "bus_stop" || hasRailwayTag(tags):
		return categoryTransit
	case tags["leisure"] == "park":
		return categoryParks
	case tags["amenity"] == "restaurant" || tags["amenity"] == "cafe":
		return categoryRestaurants
	default:
		return ""
	}
}

func hasRailwayTag(tags map[string]string) bool {
	_, ok := tags["railway"]
	return ok
}
