// Package websearch implements the web search tool on top of the Tavily API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CarlosYazid/Ai-Data-Challenge/pkg/fn"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// SearchResult is a single item returned by a web search.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Tavily calls the Tavily search API, capped at MaxResults per query.
type Tavily struct {
	apiKey     string
	maxResults int
	endpoint   string
	client     *http.Client
	retry      fn.RetryOpts
}

// NewTavily constructs a Tavily search client.
func NewTavily(apiKey string, maxResults int) *Tavily {
	return &Tavily{
		apiKey:     apiKey,
		maxResults: maxResults,
		endpoint:   tavilyEndpoint,
		client:     &http.Client{Timeout: 10 * time.Second},
		retry:      fn.RetryOpts{MaxAttempts: 4, InitialWait: time.Second, MaxWait: 30 * time.Second, Jitter: true},
	}
}

// NewTavilyWithEndpoint constructs a client against a custom endpoint. Used by tests.
func NewTavilyWithEndpoint(apiKey string, maxResults int, endpoint string) *Tavily {
	t := NewTavily(apiKey, maxResults)
	t.endpoint = endpoint
	t.retry = fn.RetryOpts{MaxAttempts: 4, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond}
	return t
}

var errRateLimited = errors.New("tavily: rate limited")

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily. Rate-limit responses are retried with
// backoff; any other failure propagates to the caller.
func (t *Tavily) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(map[string]any{
		"query":       query,
		"api_key":     t.apiKey,
		"max_results": t.maxResults,
	})
	if err != nil {
		return nil, err
	}

	// Only rate limits and upstream 5xx are worth retrying; anything else
	// (auth, bad request, decode) fails immediately.
	var permanent error
	result := fn.Retry(ctx, t.retry, func(ctx context.Context) fn.Result[[]SearchResult] {
		results, retryable, err := t.search(ctx, payload)
		if err != nil {
			if !retryable {
				permanent = err
				return fn.Ok[[]SearchResult](nil)
			}
			return fn.Err[[]SearchResult](err)
		}
		return fn.Ok(results)
	})
	if permanent != nil {
		return nil, permanent
	}
	return result.Unwrap()
}

func (t *Tavily) search(ctx context.Context, payload []byte) ([]SearchResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, errRateLimited
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("tavily: http %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("tavily: http %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("tavily: decode: %w", err)
	}

	results := make([]SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(results) >= t.maxResults {
			break
		}
	}
	return results, false, nil
}
