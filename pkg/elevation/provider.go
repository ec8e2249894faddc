package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aurel42/sunviewfinder/pkg/request"
)

// BatchSize is the default number of points per provider request.
const BatchSize = 200

// Provider resolves elevation via a batched HTTP API. Primary returns
// an ordered array matching input order (GET, comma-separated
// lat,lng); Fallback returns a re-orderable object list (POST JSON).
type Provider struct {
	client      *request.Client
	primaryURL  string // e.g. "https://api.open-elevation.com/api/v1/lookup"
	fallbackURL string // POST endpoint with re-orderable results, used if primary fails
	apiKey      string // optional, appended to the fallback request when set
}

// NewProvider creates a batched-HTTP elevation provider. apiKey is
// optional (pass "" if the fallback provider needs none) and is sent
// to the fallback endpoint only, matching opentopodata's paid-tier
// authentication scheme.
func NewProvider(client *request.Client, primaryURL, fallbackURL, apiKey string) *Provider {
	return &Provider{client: client, primaryURL: primaryURL, fallbackURL: fallbackURL, apiKey: apiKey}
}

// ResolveBatch resolves elevation for up to BatchSize points, trying
// the primary provider first and falling back to the secondary on
// exhaustion. Entries that cannot be resolved by either are nil.
func (p *Provider) ResolveBatch(ctx context.Context, points []Point) []*float64 {
	if p.primaryURL != "" {
		if res, err := p.fetchOrdered(ctx, p.primaryURL, points); err == nil {
			return res
		}
	}
	if p.fallbackURL != "" {
		if res, err := p.fetchReorderable(ctx, p.fallbackURL, points); err == nil {
			return res
		}
	}
	return make([]*float64, len(points))
}

// fetchOrdered calls a GET-based provider that returns {"elevation": [f64...]}
// in the same order as the input locations.
func (p *Provider) fetchOrdered(ctx context.Context, baseURL string, points []Point) ([]*float64, error) {
	locs := make([]string, len(points))
	for i, pt := range points {
		locs[i] = fmt.Sprintf("%.6f,%.6f", pt.Lat, pt.Lon)
	}
	u := baseURL + "?locations=" + url.QueryEscape(strings.Join(locs, "|"))

	body, err := p.client.Get(ctx, u, "")
	if err != nil {
		return nil, fmt.Errorf("elevation: primary provider: %w", err)
	}

	var parsed struct {
		Elevation []float64 `json:"elevation"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("elevation: decode primary response: %w", err)
	}
	if len(parsed.Elevation) != len(points) {
		return nil, fmt.Errorf("elevation: primary returned %d elevations for %d points", len(parsed.Elevation), len(points))
	}

	out := make([]*float64, len(points))
	for i, e := range parsed.Elevation {
		v := e
		out[i] = &v
	}
	return out, nil
}

// fetchReorderable calls a POST-based provider that returns
// {"results": [{"latitude","longitude","elevation"}...]} in arbitrary
// order, matched back to the input by rounded coordinate.
func (p *Provider) fetchReorderable(ctx context.Context, baseURL string, points []Point) ([]*float64, error) {
	type location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	reqBody, err := json.Marshal(struct {
		Locations []location `json:"locations"`
	}{Locations: func() []location {
		locs := make([]location, len(points))
		for i, pt := range points {
			locs[i] = location{Latitude: pt.Lat, Longitude: pt.Lon}
		}
		return locs
	}()})
	if err != nil {
		return nil, fmt.Errorf("elevation: encode fallback request: %w", err)
	}

	postURL := baseURL
	if p.apiKey != "" {
		postURL += "?api_key=" + url.QueryEscape(p.apiKey)
	}
	respBody, err := p.client.Post(ctx, postURL, reqBody, "application/json")
	if err != nil {
		return nil, fmt.Errorf("elevation: fallback provider: %w", err)
	}

	var parsed struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Elevation float64 `json:"elevation"`
		} `json:"results"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("elevation: decode fallback response: %w", err)
	}

	byKey := make(map[string]float64, len(parsed.Results))
	for _, r := range parsed.Results {
		byKey[roundKey(r.Latitude, r.Longitude)] = r.Elevation
	}

	out := make([]*float64, len(points))
	for i, pt := range points {
		if v, ok := byKey[roundKey(pt.Lat, pt.Lon)]; ok {
			vv := v
			out[i] = &vv
		}
	}
	return out, nil
}

func roundKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 5, 64) + "," + strconv.FormatFloat(lon, 'f', 5, 64)
}
