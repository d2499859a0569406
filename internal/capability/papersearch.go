package capability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Paper is one record supplied by the academic-paper search collaborator.
type Paper struct {
	Title     string
	Authors   []string
	Summary   string
	Published string
	PaperID   string
	PDFURL    string
	Category  string
}

// PaperClient is the academic-paper search collaborator contract.
type PaperClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]Paper, error)
	Name() string
}

// PaperSearcher retrieves passages from an academic-paper search collaborator.
type PaperSearcher struct {
	client     PaperClient
	maxResults int
}

// NewPaperSearcher creates the academic-paper search capability.
func NewPaperSearcher(client PaperClient, maxResults int) *PaperSearcher {
	if maxResults < 1 {
		maxResults = 5
	}
	return &PaperSearcher{client: client, maxResults: maxResults}
}

func (p *PaperSearcher) ID() ID { return PaperSearch }

func (p *PaperSearcher) Search(ctx context.Context, query string) ([]Passage, error) {
	papers, err := searchWithRateLimitRetry(ctx, p.client.Search, query, p.maxResults)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(papers))
	for i, paper := range papers {
		passages = append(passages, Passage{
			Content: formatPaper(paper),
			Source:  paper.PDFURL,
			Score:   rankScore(i),
			Metadata: map[string]string{
				"title":     paper.Title,
				"paper_id":  paper.PaperID,
				"published": paper.Published,
				"category":  paper.Category,
				"pdf_url":   paper.PDFURL,
				"rank":      strconv.Itoa(i + 1),
			},
		})
	}
	return passages, nil
}

// formatPaper renders a paper record as readable passage content.
func formatPaper(p Paper) string {
	authors := strings.Join(truncateAuthors(p.Authors), ", ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	if authors != "" {
		fmt.Fprintf(&sb, "Authors: %s\n", authors)
	}
	if p.Published != "" {
		fmt.Fprintf(&sb, "Published: %s\n", p.Published)
	}
	if p.PaperID != "" {
		fmt.Fprintf(&sb, "ID: %s\n", p.PaperID)
	}
	if p.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", p.Category)
	}
	fmt.Fprintf(&sb, "\nAbstract:\n%s", p.Summary)
	return sb.String()
}

func truncateAuthors(authors []string) []string {
	if len(authors) <= 3 {
		return authors
	}
	out := make([]string, 3, 4)
	copy(out, authors[:3])
	return append(out, "et al.")
}
