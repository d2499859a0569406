package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/llm"
)

const (
	synthesisTimeout   = 30 * time.Second
	synthesisMaxTokens = 1024

	// noInformationReply is returned verbatim when retrieval produced
	// nothing to synthesize from.
	noInformationReply = "I could not find relevant information to answer your question. " +
		"Try rephrasing it, or add documents to the knowledge base."

	// fallbackPassageLimit bounds the raw-passage answer used when
	// synthesis itself fails.
	fallbackPassageLimit = 3
	fallbackSnippetLen   = 500
)

// synthesize produces the final answer from aggregated passages and the
// routing rationale. With no passages it returns a fixed reply; when the LLM
// call fails it degrades to a raw concatenation of the top passages so
// retrieval work is not lost.
func (o *Orchestrator) synthesize(ctx context.Context, query, rationale string, passages []capability.Passage, outcomes []capability.Outcome) string {
	if len(passages) == 0 {
		return noInformationReply
	}
	if o.provider == nil {
		return fallbackAnswer(passages)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	resp, err := o.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesisSystemPrompt},
			{Role: llm.RoleUser, Content: synthesisUserPrompt(query, rationale, passages, outcomes)},
		},
		Temperature: 0.2,
		MaxTokens:   synthesisMaxTokens,
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		if err != nil {
			log.Printf("answer synthesis failed, returning raw passages: %v", err)
		}
		return fallbackAnswer(passages)
	}
	return strings.TrimSpace(resp.Content)
}

const synthesisSystemPrompt = `You are a research assistant that answers questions using only the provided passages.

Rules:
- Base the answer strictly on the passages. Do not use outside knowledge.
- Cite passages inline by their bracketed number, e.g. [2].
- If the passages do not fully answer the question, say which part is missing.
- If passages conflict with each other, point out the conflict instead of silently picking one.
- Be concise and direct.`

// synthesisUserPrompt renders the routing rationale and the numbered passage
// context. Passage numbers line up with the citation format requested from
// the model.
func synthesisUserPrompt(query, rationale string, passages []capability.Passage, outcomes []capability.Outcome) string {
	var sb strings.Builder
	if rationale != "" {
		fmt.Fprintf(&sb, "Routing decision: %s\n\n", rationale)
	}
	sb.WriteString("Passages:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "[%d] (source: %s", i+1, p.Source)
		if p.Page > 0 {
			fmt.Fprintf(&sb, ", page %d", p.Page)
		}
		sb.WriteString(")\n")
		sb.WriteString(p.Content)
		sb.WriteString("\n\n")
	}

	if failed := failedCapabilities(outcomes); len(failed) > 0 {
		fmt.Fprintf(&sb, "Note: the following sources were unavailable for this question: %s.\n\n",
			strings.Join(failed, ", "))
	}

	fmt.Fprintf(&sb, "Question: %s", query)
	return sb.String()
}

func failedCapabilities(outcomes []capability.Outcome) []string {
	var failed []string
	for _, o := range outcomes {
		if !o.Success {
			failed = append(failed, string(o.Capability))
		}
	}
	return failed
}

// fallbackAnswer concatenates the strongest passages with their sources.
func fallbackAnswer(passages []capability.Passage) string {
	var sb strings.Builder
	sb.WriteString("Answer synthesis was unavailable; here is the most relevant retrieved content:\n")

	n := len(passages)
	if n > fallbackPassageLimit {
		n = fallbackPassageLimit
	}
	for i := 0; i < n; i++ {
		p := passages[i]
		content := p.Content
		if runes := []rune(content); len(runes) > fallbackSnippetLen {
			content = string(runes[:fallbackSnippetLen]) + "..."
		}
		fmt.Fprintf(&sb, "\n[%s] %s\n", p.Source, content)
	}
	return sb.String()
}
