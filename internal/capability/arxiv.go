package capability

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const arxivEndpoint = "https://export.arxiv.org/api/query"

// ArxivClient implements PaperClient against the arXiv Atom API.
type ArxivClient struct {
	httpClient *http.Client
}

// NewArxivClient creates an arXiv paper search client.
func NewArxivClient() *ArxivClient {
	return &ArxivClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ArxivClient) Name() string { return "arxiv" }

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
	Category  atomCategory `xml:"primary_category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, RateLimited(fmt.Errorf("arxiv returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding arxiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if len(papers) >= maxResults {
			break
		}

		var authors []string
		for _, a := range e.Authors {
			authors = append(authors, a.Name)
		}

		pdfURL := e.ID
		for _, l := range e.Links {
			if l.Title == "pdf" {
				pdfURL = l.Href
				break
			}
		}

		published := e.Published
		if len(published) >= 10 {
			published = published[:10]
		}

		papers = append(papers, Paper{
			Title:     strings.TrimSpace(e.Title),
			Authors:   authors,
			Summary:   strings.TrimSpace(e.Summary),
			Published: published,
			PaperID:   arxivID(e.ID),
			PDFURL:    pdfURL,
			Category:  e.Category.Term,
		})
	}
	return papers, nil
}

// arxivID extracts the short identifier from an entry URL like
// http://arxiv.org/abs/2401.12345v1.
func arxivID(entryURL string) string {
	if i := strings.LastIndex(entryURL, "/"); i >= 0 {
		return entryURL[i+1:]
	}
	return entryURL
}
