package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/config"
	"github.com/ziadkadry99/askhub/internal/llm"
)

type mockProvider struct {
	content string
	err     error
	calls   int
}

func (m *mockProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.content}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func testCfg() config.RoutingConfig {
	return config.RoutingConfig{
		RuleConfidence:        0.7,
		LLMConfidenceFallback: 0.8,
		UseLLM:                true,
	}
}

func hasCapability(d Decision, id capability.ID) bool {
	for _, c := range d.Capabilities {
		if c == id {
			return true
		}
	}
	return false
}

func TestLLMDecisionParsed(t *testing.T) {
	provider := &mockProvider{content: `AGENTS: WEB_SEARCH, PAPER_SEARCH
CONFIDENCE: 0.95
RATIONALE: Query asks about recent research.`}

	r := New(provider, testCfg())
	d := r.Decide(context.Background(), "recent transformer papers", true)

	if d.Strategy != StrategyLLM {
		t.Fatalf("expected LLM strategy, got %q", d.Strategy)
	}
	if len(d.Capabilities) != 2 {
		t.Fatalf("expected 2 capabilities, got %v", d.Capabilities)
	}
	if d.Capabilities[0] != capability.WebSearch || d.Capabilities[1] != capability.PaperSearch {
		t.Errorf("wrong capabilities: %v", d.Capabilities)
	}
	if d.Confidence != 0.95 {
		t.Errorf("confidence: got %v, want 0.95", d.Confidence)
	}
	if d.Rationale != "Query asks about recent research." {
		t.Errorf("rationale: %q", d.Rationale)
	}
}

func TestLLMDecisionConfidenceFallback(t *testing.T) {
	provider := &mockProvider{content: "AGENTS: WEB_SEARCH"}
	r := New(provider, testCfg())
	d := r.Decide(context.Background(), "anything", false)

	if d.Strategy != StrategyLLM {
		t.Fatalf("expected LLM strategy, got %q", d.Strategy)
	}
	if d.Confidence != 0.8 {
		t.Errorf("expected fallback confidence 0.8, got %v", d.Confidence)
	}
}

func TestLLMUnreachableFallsBackToRules(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	r := New(provider, testCfg())
	d := r.Decide(context.Background(), "tell me something", false)

	if d.Strategy != StrategyRules {
		t.Fatalf("expected rule fallback, got %q", d.Strategy)
	}
	if len(d.Capabilities) == 0 {
		t.Error("fallback decision must contain at least one capability")
	}
}

func TestLLMGarbageFallsBackToRules(t *testing.T) {
	provider := &mockProvider{content: "I think you should try asking differently."}
	r := New(provider, testCfg())
	d := r.Decide(context.Background(), "what is machine learning", true)

	if d.Strategy != StrategyRules {
		t.Fatalf("expected rule fallback, got %q", d.Strategy)
	}
}

func TestLLMDocSearchOnEmptyIndexFallsBack(t *testing.T) {
	provider := &mockProvider{content: "AGENTS: DOC_SEARCH\nCONFIDENCE: 0.9\nRATIONALE: docs."}
	r := New(provider, testCfg())
	d := r.Decide(context.Background(), "summarize the document", false)

	if d.Strategy != StrategyRules {
		t.Fatalf("doc search against empty index must fall back to rules, got %q", d.Strategy)
	}
	if hasCapability(d, capability.DocSearch) {
		t.Error("rule decision must not select doc search with empty index")
	}
}

func TestLLMDisabledSkipsProvider(t *testing.T) {
	provider := &mockProvider{content: "AGENTS: WEB_SEARCH"}
	cfg := testCfg()
	cfg.UseLLM = false

	r := New(provider, cfg)
	d := r.Decide(context.Background(), "what is the latest news", false)

	if provider.calls != 0 {
		t.Errorf("provider called %d times with UseLLM=false", provider.calls)
	}
	if d.Strategy != StrategyRules {
		t.Errorf("expected rules strategy, got %q", d.Strategy)
	}
}

func TestMapName(t *testing.T) {
	cases := []struct {
		in     string
		want   capability.ID
		wantOK bool
	}{
		{"WEB_SEARCH", capability.WebSearch, true},
		{" web search ", capability.WebSearch, true},
		{"PDF_RAG", capability.DocSearch, true},
		{"document index", capability.DocSearch, true},
		{"ARXIV", capability.PaperSearch, true},
		{"paper_search", capability.PaperSearch, true},
		{"CONTROLLER", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := MapName(tc.in)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("MapName(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestRuleExplicitWebSearch(t *testing.T) {
	r := New(nil, testCfg())

	// Regardless of index state, explicit phrasing selects web search.
	for _, hasDocs := range []bool{true, false} {
		d := r.Decide(context.Background(), "search the web for Go generics", hasDocs)
		if !hasCapability(d, capability.WebSearch) {
			t.Errorf("hasDocs=%v: expected web search, got %v", hasDocs, d.Capabilities)
		}
	}
}

func TestRuleScenarioLatestNewsEmptyIndex(t *testing.T) {
	r := New(nil, testCfg())
	d := r.Decide(context.Background(), "What is the latest AI news", false)

	if len(d.Capabilities) != 1 || d.Capabilities[0] != capability.WebSearch {
		t.Errorf("expected web search only, got %v", d.Capabilities)
	}
}

func TestRuleScenarioExplicitWebGoldPrice(t *testing.T) {
	r := New(nil, testCfg())
	d := r.Decide(context.Background(), "search the web for current gold price", true)

	if len(d.Capabilities) != 1 || d.Capabilities[0] != capability.WebSearch {
		t.Errorf("expected exactly web search, got %v", d.Capabilities)
	}
	if d.Confidence != 0.7 {
		t.Errorf("expected rule confidence 0.7, got %v", d.Confidence)
	}
	if !strings.Contains(d.Rationale, "explicit web search") {
		t.Errorf("rationale should mention explicit web search phrasing: %q", d.Rationale)
	}
}

func TestRulePaperKeywords(t *testing.T) {
	r := New(nil, testCfg())
	d := r.Decide(context.Background(), "find papers about diffusion models", false)

	if !hasCapability(d, capability.PaperSearch) {
		t.Errorf("expected paper search, got %v", d.Capabilities)
	}
}

func TestRuleDocKeywordsRequireNonEmptyIndex(t *testing.T) {
	r := New(nil, testCfg())

	withDocs := r.Decide(context.Background(), "summarize the uploaded document", true)
	if !hasCapability(withDocs, capability.DocSearch) {
		t.Errorf("expected doc search with non-empty index, got %v", withDocs.Capabilities)
	}

	withoutDocs := r.Decide(context.Background(), "summarize the uploaded document", false)
	if hasCapability(withoutDocs, capability.DocSearch) {
		t.Errorf("doc search selected against empty index: %v", withoutDocs.Capabilities)
	}
}

func TestRuleGeneralQuestionPrefersDocsWhenAvailable(t *testing.T) {
	r := New(nil, testCfg())

	d := r.Decide(context.Background(), "explain gradient descent", true)
	if len(d.Capabilities) != 1 || d.Capabilities[0] != capability.DocSearch {
		t.Errorf("expected doc search for general question with docs, got %v", d.Capabilities)
	}

	d = r.Decide(context.Background(), "explain gradient descent", false)
	if len(d.Capabilities) != 1 || d.Capabilities[0] != capability.WebSearch {
		t.Errorf("expected web search default without docs, got %v", d.Capabilities)
	}
}

func TestRuleDecisionIsDeterministic(t *testing.T) {
	r := New(nil, testCfg())
	a := r.Decide(context.Background(), "latest research papers on LLMs", false)
	b := r.Decide(context.Background(), "latest research papers on LLMs", false)

	if len(a.Capabilities) != len(b.Capabilities) {
		t.Fatal("rule decisions differ across calls")
	}
	for i := range a.Capabilities {
		if a.Capabilities[i] != b.Capabilities[i] {
			t.Errorf("capability order differs at %d: %v vs %v", i, a.Capabilities, b.Capabilities)
		}
	}
}
