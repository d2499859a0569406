package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIClient implements WebClient against SerpAPI's Google engine.
type SerpAPIClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewSerpAPIClient creates a SerpAPI web search client.
func NewSerpAPIClient(apiKey string) *SerpAPIClient {
	return &SerpAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

type serpOrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serpResponse struct {
	OrganicResults []serpOrganicResult `json:"organic_results"`
}

func (c *SerpAPIClient) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	params := url.Values{
		"q":       {query},
		"api_key": {c.apiKey},
		"num":     {strconv.Itoa(maxResults)},
		"engine":  {"google"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building serpapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, RateLimited(fmt.Errorf("serpapi returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}

	var body serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding serpapi response: %w", err)
	}

	results := make([]WebResult, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		if len(results) >= maxResults {
			break
		}
		results = append(results, WebResult{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		})
	}
	return results, nil
}
