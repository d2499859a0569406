package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const ddgEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGoClient implements WebClient against the DuckDuckGo Instant
// Answer API. It needs no API key, which makes it the default collaborator.
type DuckDuckGoClient struct {
	httpClient *http.Client
}

// NewDuckDuckGoClient creates a DuckDuckGo web search client.
func NewDuckDuckGoClient() *DuckDuckGoClient {
	return &DuckDuckGoClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *DuckDuckGoClient) Name() string { return "duckduckgo" }

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func (c *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_redirect":   {"1"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ddgEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building duckduckgo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, RateLimited(fmt.Errorf("duckduckgo returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	var body ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding duckduckgo response: %w", err)
	}

	var results []WebResult

	// The instant answer, when present, is the best result.
	if body.AbstractText != "" {
		results = append(results, WebResult{
			Title:   body.Heading,
			Link:    body.AbstractURL,
			Snippet: body.AbstractText,
		})
	}

	for _, topic := range flattenTopics(body.RelatedTopics) {
		if len(results) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, WebResult{
			Title:   topic.Text,
			Link:    topic.FirstURL,
			Snippet: topic.Text,
		})
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// flattenTopics expands DuckDuckGo's nested category groups into a flat
// ordered list.
func flattenTopics(topics []ddgTopic) []ddgTopic {
	var flat []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, flattenTopics(t.Topics)...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}
