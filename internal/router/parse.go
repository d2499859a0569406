package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ziadkadry99/askhub/internal/capability"
)

var (
	agentsRe     = regexp.MustCompile(`(?i)AGENTS:\s*\[?([^\]\n]+)\]?`)
	confidenceRe = regexp.MustCompile(`(?i)CONFIDENCE:\s*([0-9.]+)`)
	rationaleRe  = regexp.MustCompile(`(?i)RATIONALE:\s*(.+)`)
)

// parsedReply is the structured form of an LLM routing reply. confidence
// is -1 when the field was absent or unparseable.
type parsedReply struct {
	capabilities []capability.ID
	confidence   float64
	rationale    string
}

// parseReply extracts a routing decision from the LLM's labeled reply.
// Parsing is tolerant: names match case-insensitively via keyword synonyms,
// unmatched names are dropped silently, and duplicates collapse preserving
// first occurrence. It reports ok=false when no valid capability survives,
// or when document search is proposed while the index is empty.
func parseReply(content string, hasDocs bool) (parsedReply, bool) {
	m := agentsRe.FindStringSubmatch(content)
	if m == nil {
		return parsedReply{}, false
	}

	var ids []capability.ID
	seen := make(map[capability.ID]bool)
	for _, name := range strings.Split(m[1], ",") {
		id, ok := MapName(name)
		if !ok {
			continue
		}
		if id == capability.DocSearch && !hasDocs {
			// Proposing document search against an empty index makes the
			// whole reply inapplicable.
			return parsedReply{}, false
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return parsedReply{}, false
	}

	confidence := -1.0
	if cm := confidenceRe.FindStringSubmatch(content); cm != nil {
		if v, err := strconv.ParseFloat(cm[1], 64); err == nil && v >= 0 && v <= 1 {
			confidence = v
		}
	}

	var rationale string
	if rm := rationaleRe.FindStringSubmatch(content); rm != nil {
		rationale = strings.TrimSpace(rm[1])
	}

	return parsedReply{
		capabilities: ids,
		confidence:   confidence,
		rationale:    rationale,
	}, true
}

// MapName maps a free-text capability name onto the closed capability set.
// The mapping is total: any text either maps to exactly one known tag or
// to no match, never to an undefined variant.
func MapName(name string) (capability.ID, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "":
		return "", false
	case strings.Contains(n, "pdf"), strings.Contains(n, "rag"), strings.Contains(n, "doc"):
		return capability.DocSearch, true
	case strings.Contains(n, "arxiv"), strings.Contains(n, "paper"):
		return capability.PaperSearch, true
	case strings.Contains(n, "web"), strings.Contains(n, "search"):
		return capability.WebSearch, true
	default:
		return "", false
	}
}
