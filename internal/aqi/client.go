// Package aqi fetches current air-quality data from the OpenWeather
// Air Pollution API and caches recent per-city samples.
package aqi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"aircast/internal/cache"
	apperrors "aircast/internal/errors"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/air_pollution"

// Components holds the seven pollutant concentrations plus NH3, in
// the provider's µg/m³ units.
type Components struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// Sample is one normalized air-quality observation.
type Sample struct {
	AQI        int        `json:"aqi"` // 1 (good) .. 5 (very poor)
	Components Components `json:"components"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// Client calls the pollution API. A nil cityCache disables caching.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cityCache  *cache.TTLCache
}

// NewClient builds a Client. The cityCache (10 minute TTL is typical)
// serves repeated city lookups from the alert scheduler.
func NewClient(apiKey string, cityCache *cache.TTLCache) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cityCache:  cityCache,
	}
}

// openWeather response shape (only the fields we read).
type owResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components Components `json:"components"`
	} `json:"list"`
}

// Fetch returns the current sample for the given coordinates.
// Fails with ErrConfig when no API key is set and ErrUpstream on
// provider failures; there are no retries.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Sample, error) {
	if c.apiKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "pollution API key not set")
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.4f", lat))
	params.Set("lon", fmt.Sprintf("%.4f", lon))
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned %d: %s", apperrors.ErrUpstream, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed owResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", apperrors.ErrUpstream, err)
	}
	if len(parsed.List) == 0 {
		return nil, fmt.Errorf("%w: empty response", apperrors.ErrUpstream)
	}

	item := parsed.List[0]
	if item.Main.AQI < 1 || item.Main.AQI > 5 {
		return nil, fmt.Errorf("%w: index %d out of range", apperrors.ErrUpstream, item.Main.AQI)
	}

	return &Sample{
		AQI:        item.Main.AQI,
		Components: item.Components,
		FetchedAt:  time.Now(),
	}, nil
}

// FetchCity resolves through the short-TTL city cache before hitting
// the provider.
func (c *Client) FetchCity(ctx context.Context, city string, lat, lon float64) (*Sample, error) {
	key := "city:" + city
	if c.cityCache != nil {
		if v, ok := c.cityCache.Get(key); ok {
			return v.(*Sample), nil
		}
	}
	sample, err := c.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if c.cityCache != nil {
		c.cityCache.Set(key, sample)
	}
	return sample, nil
}

// Coord is one batch request item.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BatchItem is one batch result. Err is per-item; one coordinate
// failing never fails the whole batch.
type BatchItem struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Sample *Sample `json:"data,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// FetchBatch fetches all coordinates concurrently with all-settle
// semantics and returns results in input order.
func (c *Client) FetchBatch(ctx context.Context, coords []Coord) []BatchItem {
	items := make([]BatchItem, len(coords))
	var wg sync.WaitGroup
	for i, co := range coords {
		wg.Add(1)
		go func(i int, co Coord) {
			defer wg.Done()
			items[i] = BatchItem{Lat: co.Lat, Lon: co.Lon}
			sample, err := c.Fetch(ctx, co.Lat, co.Lon)
			if err != nil {
				items[i].Err = batchErrText(err)
				return
			}
			items[i].Sample = sample
		}(i, co)
	}
	wg.Wait()
	return items
}

// batchErrText keeps the provider detail for per-item batch errors;
// it is third-party text, not internal driver codes.
func batchErrText(err error) string {
	if apperrors.Is(err, apperrors.ErrUpstream) {
		return err.Error()
	}
	return apperrors.Message(err, "")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SetBaseURL overrides the provider endpoint. Tests point this at a
// local httptest server.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }
