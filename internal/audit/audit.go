package audit

import (
	"time"

	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/router"
)

// OutcomeSummary is the audited view of one capability invocation. It
// records counts and errors, never full passage content.
type OutcomeSummary struct {
	Capability capability.ID      `json:"capability"`
	Success    bool               `json:"success"`
	Err        string             `json:"error,omitempty"`
	ErrKind    capability.ErrKind `json:"error_kind,omitempty"`
	Passages   int                `json:"passages"`
	ElapsedMS  int64              `json:"elapsed_ms"`
}

// Entry is a single request record in the bounded audit log.
type Entry struct {
	RequestID    string           `json:"request_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Query        string           `json:"query"`
	Capabilities []capability.ID  `json:"capabilities"`
	Rationale    string           `json:"rationale"`
	Confidence   float64          `json:"confidence"`
	Strategy     router.Strategy  `json:"strategy"`
	Outcomes     []OutcomeSummary `json:"outcomes"`
	Answer       string           `json:"answer"`
	ElapsedMS    int64            `json:"elapsed_ms"`
}

// Stats aggregates the logged requests.
type Stats struct {
	TotalRequests   int                   `json:"total_requests"`
	CapabilityUsage map[capability.ID]int `json:"capability_usage"`
	SuccessRate     float64               `json:"success_rate"`
	AvgElapsedMS    float64               `json:"avg_elapsed_ms"`
}

// SummarizeOutcomes converts raw capability outcomes into their audited form.
func SummarizeOutcomes(outcomes []capability.Outcome) []OutcomeSummary {
	summaries := make([]OutcomeSummary, 0, len(outcomes))
	for _, o := range outcomes {
		summaries = append(summaries, OutcomeSummary{
			Capability: o.Capability,
			Success:    o.Success,
			Err:        o.Err,
			ErrKind:    o.ErrKind,
			Passages:   len(o.Passages),
			ElapsedMS:  o.Elapsed.Milliseconds(),
		})
	}
	return summaries
}
