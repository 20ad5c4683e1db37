// Package source implements the job-board clients that feed the cycle
// coordinator with raw listings. Each client paces its outbound requests so
// upstream rate limits are respected.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"jobmate/alert-service/internal/model"
)

const httpTimeout = 15 * time.Second

// JSearchSource fetches listings from the JSearch API (RapidAPI).
// If APIKey or APIHost is empty, Fetch returns (nil, nil) gracefully — the
// cycle simply runs without this board and logs a warning.
type JSearchSource struct {
	APIKey     string
	APIHost    string
	RemoteOnly bool
	client     *http.Client
	limiter    *rate.Limiter
}

// NewJSearchSource constructs a client with minInterval spacing between
// outbound requests.
func NewJSearchSource(apiKey, apiHost string, remoteOnly bool, minInterval time.Duration) *JSearchSource {
	return &JSearchSource{
		APIKey:     apiKey,
		APIHost:    apiHost,
		RemoteOnly: remoteOnly,
		client:     &http.Client{Timeout: httpTimeout},
		limiter:    newPacer(minInterval),
	}
}

// Name identifies this board in reports and raw listings.
func (s *JSearchSource) Name() string { return model.SourceJSearch }

// jsearchResponse mirrors the top-level JSearch JSON response. Items stay
// undecoded — the normalizer owns field mapping.
type jsearchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

// Fetch retrieves listings for one title/location query.
func (s *JSearchSource) Fetch(ctx context.Context, title, location string) ([]model.RawListing, error) {
	if s.APIKey == "" || s.APIHost == "" {
		log.Println("[jsearch] JSEARCH_API_KEY / JSEARCH_API_HOST not set — skipping")
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s in %s", title, location))
	params.Set("page", "1")
	params.Set("num_pages", "1")
	if s.RemoteOnly {
		params.Set("remote_jobs_only", "true")
	}
	reqURL := fmt.Sprintf("https://%s/search?%s", s.APIHost, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", s.APIKey)
	req.Header.Set("x-rapidapi-host", s.APIHost)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsearch returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp jsearchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if apiResp.Status != "OK" {
		return nil, fmt.Errorf("jsearch returned status %q", apiResp.Status)
	}

	listings := make([]model.RawListing, 0, len(apiResp.Data))
	for _, item := range apiResp.Data {
		listings = append(listings, model.RawListing{Source: model.SourceJSearch, Data: item})
	}
	return listings, nil
}

// newPacer builds the spacing limiter shared by all boards: at most one
// request per minInterval, with a burst of one.
func newPacer(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}
