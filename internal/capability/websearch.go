package capability

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// WebResult is one record supplied by the live-web search collaborator.
type WebResult struct {
	Title   string
	Link    string
	Snippet string
}

// WebClient is the live-web search collaborator contract.
type WebClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
	Name() string
}

// retryBackoff is the fixed delay before the single rate-limit retry.
const retryBackoff = 2 * time.Second

// WebSearcher retrieves passages from a live-web search collaborator.
type WebSearcher struct {
	client     WebClient
	maxResults int
}

// NewWebSearcher creates the live-web search capability.
func NewWebSearcher(client WebClient, maxResults int) *WebSearcher {
	if maxResults < 1 {
		maxResults = 5
	}
	return &WebSearcher{client: client, maxResults: maxResults}
}

func (w *WebSearcher) ID() ID { return WebSearch }

func (w *WebSearcher) Search(ctx context.Context, query string) ([]Passage, error) {
	results, err := searchWithRateLimitRetry(ctx, w.client.Search, query, w.maxResults)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(results))
	for i, r := range results {
		passages = append(passages, Passage{
			Content: fmt.Sprintf("%s\n\n%s", r.Title, r.Snippet),
			Source:  r.Link,
			Score:   rankScore(i),
			Metadata: map[string]string{
				"title":         r.Title,
				"url":           r.Link,
				"search_engine": w.client.Name(),
				"rank":          strconv.Itoa(i + 1),
			},
		})
	}
	return passages, nil
}

// searchWithRateLimitRetry invokes fn and retries exactly once, after a
// fixed backoff, when the failure kind is rate-limit. All other failures
// are returned as-is.
func searchWithRateLimitRetry[T any](ctx context.Context, fn func(context.Context, string, int) ([]T, error), query string, max int) ([]T, error) {
	results, err := fn(ctx, query, max)
	if err == nil || KindOf(err) != KindRateLimit {
		return results, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}
	return fn(ctx, query, max)
}

// rankScore converts a zero-based rank into a descending relevance score.
// Collaborators supply ordered but unscored records.
func rankScore(rank int) float64 {
	score := 1.0 - float64(rank)*0.1
	if score < 0.1 {
		score = 0.1
	}
	return score
}
