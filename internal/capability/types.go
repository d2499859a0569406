package capability

import "time"

// ID identifies one retrieval capability. The set is closed: routing maps
// free-text capability names onto these tags and nothing else.
type ID string

const (
	DocSearch   ID = "doc_search"
	WebSearch   ID = "web_search"
	PaperSearch ID = "paper_search"
)

// All lists every known capability in display order.
var All = []ID{DocSearch, WebSearch, PaperSearch}

// Valid reports whether id is a known capability tag.
func (id ID) Valid() bool {
	switch id {
	case DocSearch, WebSearch, PaperSearch:
		return true
	}
	return false
}

// Passage is one retrieved piece of content. Passages are produced fresh
// per query and never persisted.
type Passage struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Page     int               `json:"page,omitempty"`
	Score    float64           `json:"score,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Outcome records one capability invocation for a single query. Failed
// capabilities contribute zero passages and are never retried by the
// orchestrator.
type Outcome struct {
	Capability ID            `json:"capability"`
	Success    bool          `json:"success"`
	Err        string        `json:"error,omitempty"`
	ErrKind    ErrKind       `json:"error_kind,omitempty"`
	Passages   []Passage     `json:"-"`
	Elapsed    time.Duration `json:"elapsed"`
}
