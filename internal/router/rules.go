package router

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/askhub/internal/capability"
)

var (
	explicitWebPhrases = []string{
		"search the web", "search web", "google search", "web search",
		"search online", "search internet", "find online", "look up online",
	}
	paperKeywords = []string{
		"arxiv", "paper", "research", "publication", "study",
		"academic", "journal", "scientific",
	}
	recencyKeywords = []string{
		"recent", "latest", "current", "news", "today", "now",
		"price", "stock", "weather", "score", "live",
	}
	docKeywords = []string{
		"document", "pdf", "uploaded", "file", "knowledge base",
		"according to", "summarize the", "from the document",
	}
	generalKeywords = []string{
		"what is", "who is", "explain", "define", "how does", "why",
	}
)

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// ruleDecide is the deterministic fallback decision: fixed keyword rules
// applied in priority order. Its confidence is the configured rule-based
// constant, lower than typical LLM confidences.
func (r *Router) ruleDecide(query string, hasDocs bool) Decision {
	q := strings.ToLower(query)

	var ids []capability.ID
	var rationale []string
	selected := make(map[capability.ID]bool)
	add := func(id capability.ID, why string) {
		if selected[id] {
			return
		}
		selected[id] = true
		ids = append(ids, id)
		rationale = append(rationale, why)
	}

	// 1. Explicit web-search phrasing always wins.
	if containsAny(q, explicitWebPhrases) {
		add(capability.WebSearch, "explicit web search requested")
	}

	// 2. Academic vocabulary.
	if containsAny(q, paperKeywords) {
		add(capability.PaperSearch, "query mentions research/papers")
	}

	// 3. Recency and time-sensitive vocabulary.
	if containsAny(q, recencyKeywords) || mentionsRecentYear(q) {
		add(capability.WebSearch, "query asks for recent/current information")
	}

	// 4. Document-reference vocabulary, only against a non-empty index.
	if hasDocs && containsAny(q, docKeywords) {
		add(capability.DocSearch, "query references documents")
	}

	// 5. Default: general-knowledge phrasing prefers the knowledge base
	// when it holds content, otherwise the web.
	if len(ids) == 0 {
		if hasDocs && containsAny(q, generalKeywords) {
			add(capability.DocSearch, "checking knowledge base for general question")
		} else {
			add(capability.WebSearch, "default to web search")
		}
	}

	return Decision{
		Capabilities: ids,
		Rationale:    "Rule-based routing: " + strings.Join(rationale, ", "),
		Confidence:   r.cfg.RuleConfidence,
		Strategy:     StrategyRules,
		Timestamp:    time.Now(),
	}
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// mentionsRecentYear reports whether the query names a 4-digit year within
// a year of now, which signals time-sensitive intent.
func mentionsRecentYear(q string) bool {
	current := time.Now().Year()
	for _, m := range yearRe.FindAllString(q, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if y >= current-1 && y <= current+1 {
			return true
		}
	}
	return false
}
