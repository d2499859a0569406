package router

import (
	"context"
	"time"

	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/config"
	"github.com/ziadkadry99/askhub/internal/llm"
)

// Strategy names which decision stage produced a Decision.
type Strategy string

const (
	StrategyLLM   Strategy = "llm"
	StrategyRules Strategy = "rules"
)

// Decision is the selected subset of capabilities for one query, with
// rationale and confidence. It is produced once per query and not mutated.
type Decision struct {
	Capabilities []capability.ID `json:"capabilities"`
	Rationale    string          `json:"rationale"`
	Confidence   float64         `json:"confidence"`
	Strategy     Strategy        `json:"strategy"`
	Timestamp    time.Time       `json:"timestamp"`
}

// llmTimeout bounds the routing classification call.
const llmTimeout = 15 * time.Second

// Router decides which retrieval capabilities apply to a query. The LLM
// stage runs first and either yields a valid decision or declares itself
// inconclusive; the deterministic rule stage runs only in the latter case.
// Routing is pure query classification: it keeps no state across queries.
type Router struct {
	provider llm.Provider
	cfg      config.RoutingConfig
}

// New creates a Router. provider may be nil, in which case only the
// rule-based stage is used.
func New(provider llm.Provider, cfg config.RoutingConfig) *Router {
	return &Router{provider: provider, cfg: cfg}
}

// Decide returns the routing decision for a query. hasDocs reports whether
// the document index currently holds any content; document-index search is
// never selected against an empty index.
func (r *Router) Decide(ctx context.Context, query string, hasDocs bool) Decision {
	if r.cfg.UseLLM && r.provider != nil {
		if d, ok := r.llmDecide(ctx, query, hasDocs); ok {
			return d
		}
	}
	return r.ruleDecide(query, hasDocs)
}

// llmDecide asks the completion backend to classify the query. It reports
// ok=false — never an error — when the reply is unusable: backend failure,
// unparseable output, an empty selection, or document search proposed while
// the index is empty.
func (r *Router) llmDecide(ctx context.Context, query string, hasDocs bool) (Decision, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: routingPrompt(query, hasDocs)}},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		return Decision{}, false
	}

	parsed, ok := parseReply(resp.Content, hasDocs)
	if !ok {
		return Decision{}, false
	}

	confidence := parsed.confidence
	if confidence < 0 {
		confidence = r.cfg.LLMConfidenceFallback
	}

	rationale := parsed.rationale
	if rationale == "" {
		rationale = "LLM routing decision"
	}

	return Decision{
		Capabilities: parsed.capabilities,
		Rationale:    rationale,
		Confidence:   confidence,
		Strategy:     StrategyLLM,
		Timestamp:    time.Now(),
	}, true
}
