package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// UpstreamError describes a non-success response from the weather API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather API error (status %d): %s", e.StatusCode, e.Message)
}

// WeatherClient handles weatherapi.com API interactions. It owns the API
// key entirely; nothing outside this package ever inspects it.
type WeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWeatherClient creates a new weather API client.
// The baseURL should be the versioned API root (e.g., "https://api.weatherapi.com/v1").
func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured base URL for the weather API.
func (c *WeatherClient) BaseURL() string {
	return c.baseURL
}

// fetch executes a GET against one API endpoint and decodes the JSON
// response. Non-200 responses are mapped to *UpstreamError with the
// upstream's own error message when one is present.
func (c *WeatherClient) fetch(ctx context.Context, endpoint string, params url.Values) (interface{}, error) {
	params.Set("key", c.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var payload interface{}
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(payload),
		}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	return payload, nil
}

// fetchObject is fetch for the endpoints that return a JSON object.
func (c *WeatherClient) fetchObject(ctx context.Context, endpoint string, params url.Values) (map[string]interface{}, error) {
	payload, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected %s response shape: %T", endpoint, payload)
	}
	return obj, nil
}

// upstreamMessage extracts the error message the API embeds in failure
// payloads ({"error": {"code": ..., "message": ...}}).
func upstreamMessage(payload interface{}) string {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return "no error detail provided"
	}
	errObj, ok := obj["error"].(map[string]interface{})
	if !ok {
		return "no error detail provided"
	}
	msg, ok := errObj["message"].(string)
	if !ok {
		return "no error detail provided"
	}
	return msg
}

// yesNo renders the API's boolean query flags.
func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Current retrieves current conditions for a location query.
func (c *WeatherClient) Current(ctx context.Context, query string, includeAirQuality bool) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("aqi", yesNo(includeAirQuality))
	return c.fetchObject(ctx, "current.json", params)
}

// Forecast retrieves a multi-day forecast for a location query.
func (c *WeatherClient) Forecast(ctx context.Context, query string, days int, includeAirQuality, includeAlerts bool) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("aqi", yesNo(includeAirQuality))
	params.Set("alerts", yesNo(includeAlerts))
	return c.fetchObject(ctx, "forecast.json", params)
}

// AirQuality retrieves current conditions with air quality data forced on.
func (c *WeatherClient) AirQuality(ctx context.Context, query string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("aqi", "yes")
	return c.fetchObject(ctx, "current.json", params)
}

// Astronomy retrieves sunrise/sunset/moon data for a date.
func (c *WeatherClient) Astronomy(ctx context.Context, query, date string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("dt", date)
	return c.fetchObject(ctx, "astronomy.json", params)
}

// SearchLocations finds locations matching a query. The upstream returns
// a bare JSON array; it is wrapped as {"items": [...]} so every tool
// result is an object.
func (c *WeatherClient) SearchLocations(ctx context.Context, query string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	payload, err := c.fetch(ctx, "search.json", params)
	if err != nil {
		return nil, err
	}
	items, ok := payload.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected search.json response shape: %T", payload)
	}
	return map[string]interface{}{"items": items}, nil
}

// Timezone retrieves timezone information for a location query.
func (c *WeatherClient) Timezone(ctx context.Context, query string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.fetchObject(ctx, "timezone.json", params)
}

// SportEvents retrieves upcoming sport events near a location.
func (c *WeatherClient) SportEvents(ctx context.Context, query string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.fetchObject(ctx, "sports.json", params)
}
