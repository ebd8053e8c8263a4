// internal/infra/openweather/client.go
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrAPIKeyMissing is returned when the refresh job is started without a key.
var ErrAPIKeyMissing = fmt.Errorf("openweather API key not configured")

// Current is the slice of the current-weather response the service stores.
type Current struct {
	TemperatureC float64
	HumidityPct  float64
	Rainfall1hMm float64 // 0 when the response has no rain block
}

// Client fetches current weather by coordinates from the OpenWeatherMap 2.5 API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type currentResponse struct {
	Message string `json:"message"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// CurrentWeather returns the metric current conditions at lat/lon.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (Current, error) {
	if c.apiKey == "" {
		return Current{}, ErrAPIKeyMissing
	}

	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Current{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Current{}, fmt.Errorf("current weather request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Current{}, fmt.Errorf("read response: %w", err)
	}

	var parsed currentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Current{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Current{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, parsed.Message)
	}

	return Current{
		TemperatureC: parsed.Main.Temp,
		HumidityPct:  parsed.Main.Humidity,
		Rainfall1hMm: parsed.Rain.OneHour,
	}, nil
}
