package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/askhub/internal/audit"
	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/config"
	"github.com/ziadkadry99/askhub/internal/llm"
	"github.com/ziadkadry99/askhub/internal/router"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// Response is the complete answer to one query.
type Response struct {
	RequestID string               `json:"request_id"`
	Answer    string               `json:"answer"`
	Decision  router.Decision      `json:"decision"`
	Outcomes  []capability.Outcome `json:"outcomes"`
	Sources   []string             `json:"sources"`
	ElapsedMS int64                `json:"elapsed_ms"`
}

// Orchestrator runs the full query flow: route, fan out to the selected
// capabilities in parallel, aggregate passages, synthesize an answer, and
// record the request in the audit log.
type Orchestrator struct {
	router       *router.Router
	capabilities map[capability.ID]capability.Capability
	provider     llm.Provider
	store        vectordb.Store
	auditLog     *audit.Store
	cfg          config.RetrievalConfig
}

// New creates an Orchestrator. auditLog may be nil, in which case requests
// are not recorded.
func New(
	r *router.Router,
	caps []capability.Capability,
	provider llm.Provider,
	store vectordb.Store,
	auditLog *audit.Store,
	cfg config.RetrievalConfig,
) *Orchestrator {
	byID := make(map[capability.ID]capability.Capability, len(caps))
	for _, c := range caps {
		byID[c.ID()] = c
	}
	return &Orchestrator{
		router:       r,
		capabilities: byID,
		provider:     provider,
		store:        store,
		auditLog:     auditLog,
		cfg:          cfg,
	}
}

// Handle answers a single query end to end.
func (o *Orchestrator) Handle(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	start := time.Now()
	requestID := uuid.New().String()

	decision := o.router.Decide(ctx, query, o.store.Count() > 0)
	outcomes := o.fanOut(ctx, query, decision.Capabilities)
	passages := o.aggregate(outcomes)

	answer := o.synthesize(ctx, query, decision.Rationale, passages, outcomes)
	sources := collectSources(passages, o.cfg.MaxSources)
	elapsed := time.Since(start)

	if o.auditLog != nil {
		_, err := o.auditLog.Log(ctx, audit.Entry{
			RequestID:    requestID,
			Timestamp:    start.UTC(),
			Query:        query,
			Capabilities: decision.Capabilities,
			Rationale:    decision.Rationale,
			Confidence:   decision.Confidence,
			Strategy:     decision.Strategy,
			Outcomes:     audit.SummarizeOutcomes(outcomes),
			Answer:       answer,
			ElapsedMS:    elapsed.Milliseconds(),
		})
		if err != nil {
			// Audit failures never fail the request itself.
			log.Printf("audit log write failed for request %s: %v", requestID, err)
		}
	}

	return &Response{
		RequestID: requestID,
		Answer:    answer,
		Decision:  decision,
		Outcomes:  outcomes,
		Sources:   sources,
		ElapsedMS: elapsed.Milliseconds(),
	}, nil
}

// fanOut invokes every selected capability concurrently. Each invocation
// gets its own timeout so one slow or failing capability cannot starve or
// cancel the others. Outcomes come back in decision order.
func (o *Orchestrator) fanOut(ctx context.Context, query string, ids []capability.ID) []capability.Outcome {
	timeout := time.Duration(o.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	outcomes := make([]capability.Outcome, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id capability.ID) {
			defer wg.Done()
			outcomes[i] = o.invoke(ctx, id, query, timeout)
		}(i, id)
	}
	wg.Wait()
	return outcomes
}

func (o *Orchestrator) invoke(ctx context.Context, id capability.ID, query string, timeout time.Duration) capability.Outcome {
	start := time.Now()
	outcome := capability.Outcome{Capability: id}

	c, ok := o.capabilities[id]
	if !ok {
		outcome.Err = fmt.Sprintf("capability %s is not configured", id)
		outcome.ErrKind = capability.KindOther
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	capCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	passages, err := c.Search(capCtx, query)
	outcome.Elapsed = time.Since(start)
	if err != nil {
		outcome.Err = err.Error()
		outcome.ErrKind = capability.KindOf(err)
		return outcome
	}

	outcome.Success = true
	outcome.Passages = passages
	return outcome
}

// aggregate merges passages across outcomes, keeping at most
// PassagesPerSource from each capability and preserving each capability's
// own ranking.
func (o *Orchestrator) aggregate(outcomes []capability.Outcome) []capability.Passage {
	perSource := o.cfg.PassagesPerSource
	if perSource <= 0 {
		perSource = 3
	}

	var merged []capability.Passage
	for _, outcome := range outcomes {
		if !outcome.Success {
			continue
		}
		n := len(outcome.Passages)
		if n > perSource {
			n = perSource
		}
		merged = append(merged, outcome.Passages[:n]...)
	}
	return merged
}

// collectSources returns the distinct passage sources in first-seen order,
// capped at max.
func collectSources(passages []capability.Passage, max int) []string {
	if max <= 0 {
		max = 10
	}
	seen := make(map[string]bool)
	var sources []string
	for _, p := range passages {
		if p.Source == "" || seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		sources = append(sources, p.Source)
		if len(sources) == max {
			break
		}
	}
	return sources
}
