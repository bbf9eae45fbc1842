// Package floodapi is a client for the Environment Agency real-time flood
// monitoring API.
package floodapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"floodwatch/internal/errs"
)

// RawReading is one item from the readings endpoint, undecoded beyond JSON.
// Value is a pointer so a missing value can be told apart from 0.
type RawReading struct {
	Measure  string   `json:"measure"`
	DateTime string   `json:"dateTime"`
	Value    *float64 `json:"value"`
}

type readingsResponse struct {
	Items []RawReading `json:"items"`
}

type stationsResponse struct {
	Items []struct {
		ID string `json:"@id"`
	} `json:"items"`
}

// Client talks to one flood monitoring API root over HTTP.
type Client struct {
	httpClient *http.Client
	rootURL    string
	itemLimit  int
	logger     *slog.Logger
}

func NewClient(rootURL string, itemLimit int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		rootURL:    strings.TrimSuffix(rootURL, "/"),
		itemLimit:  itemLimit,
		logger:     logger,
	}
}

// FetchStationIDs returns the id of every station the API knows about. Ids
// are the final path segment of each item's @id reference.
func (c *Client) FetchStationIDs(ctx context.Context) ([]string, error) {
	var body stationsResponse
	if err := c.getJSON(ctx, c.rootURL, &body); err != nil {
		return nil, errs.New(errs.Network, "floodapi.FetchStationIDs", err)
	}

	ids := make([]string, 0, len(body.Items))
	for i, item := range body.Items {
		segments := strings.Split(item.ID, "/")
		id := segments[len(segments)-1]
		if id == "" {
			return nil, errs.Newf(errs.DataFormat, "floodapi.FetchStationIDs", "item %d: no station id in @id %q", i, item.ID)
		}
		ids = append(ids, id)
	}
	c.logger.Debug("fetched station ids", "count", len(ids))
	return ids, nil
}

// FetchReadings returns the raw readings for one station since the given
// time. The upstream caps the response at the configured item limit.
func (c *Client) FetchReadings(ctx context.Context, stationID string, since time.Time) ([]RawReading, error) {
	url := fmt.Sprintf("%s/%s/readings?since=%s&_sorted&_limit=%d",
		c.rootURL, stationID, sinceParam(since), c.itemLimit)

	var body readingsResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, errs.New(errs.Network, "floodapi.FetchReadings", err)
	}
	c.logger.Debug("fetched readings", "station_id", stationID, "count", len(body.Items))
	return body.Items, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sinceParam renders t the way the readings endpoint expects: UTC, truncated
// to the minute, Z-suffixed.
func sinceParam(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(time.RFC3339)
}
