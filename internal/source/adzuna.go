package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"jobmate/alert-service/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per (title × location) pair
)

// AdzunaSource fetches listings from the Adzuna public API.
// If AppID or AppKey is empty, Fetch returns (nil, nil) gracefully.
type AdzunaSource struct {
	AppID   string
	AppKey  string
	Country string // "fr", "gb", "us", …
	client  *http.Client
	limiter *rate.Limiter
}

// NewAdzunaSource constructs a client with minInterval spacing between
// outbound requests.
func NewAdzunaSource(appID, appKey, country string, minInterval time.Duration) *AdzunaSource {
	return &AdzunaSource{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		client:  &http.Client{Timeout: httpTimeout},
		limiter: newPacer(minInterval),
	}
}

// Name identifies this board in reports and raw listings.
func (s *AdzunaSource) Name() string { return model.SourceAdzuna }

// adzunaResponse mirrors the top-level Adzuna JSON response. Items stay
// undecoded — the normalizer owns field mapping.
type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// Fetch retrieves all available listings for one title/location query,
// iterating through pages until no more results or adzunaMaxPages is reached.
func (s *AdzunaSource) Fetch(ctx context.Context, title, location string) ([]model.RawListing, error) {
	if s.AppID == "" || s.AppKey == "" {
		log.Println("[adzuna] ADZUNA_APP_ID / ADZUNA_APP_KEY not set — skipping")
		return nil, nil
	}

	var listings []model.RawListing

	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := s.fetchPage(ctx, title, location, page)
		if err != nil {
			return listings, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break // No more results
		}
		listings = append(listings, batch...)
		if len(batch) < adzunaPageSize {
			break // Last page
		}
	}

	return listings, nil
}

func (s *AdzunaSource) fetchPage(ctx context.Context, title, location string, page int) ([]model.RawListing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", adzunaBaseURL, s.Country, page)

	params := url.Values{}
	params.Set("app_id", s.AppID)
	params.Set("app_key", s.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", title)
	params.Set("where", location)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

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
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	listings := make([]model.RawListing, 0, len(apiResp.Results))
	for _, item := range apiResp.Results {
		listings = append(listings, model.RawListing{Source: model.SourceAdzuna, Data: item})
	}
	return listings, nil
}
