package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/db"
	"github.com/ziadkadry99/askhub/internal/router"
)

// Store is the append-only, bounded request log. Inserting past the
// configured cap evicts the oldest entries.
type Store struct {
	db         *db.DB
	maxEntries int
}

// NewStore creates a Store backed by the given database, keeping at most
// maxEntries records.
func NewStore(database *db.DB, maxEntries int) *Store {
	if maxEntries < 1 {
		maxEntries = 1000
	}
	return &Store{db: database, maxEntries: maxEntries}
}

// Log inserts a new entry and evicts beyond the cap. If entry.RequestID is
// empty a UUID is generated. Returns the request id.
func (s *Store) Log(ctx context.Context, entry Entry) (string, error) {
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	caps, err := json.Marshal(entry.Capabilities)
	if err != nil {
		return "", fmt.Errorf("marshalling capabilities: %w", err)
	}
	outcomes, err := json.Marshal(entry.Outcomes)
	if err != nil {
		return "", fmt.Errorf("marshalling outcomes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO request_log (
			request_id, timestamp, query, capabilities, rationale,
			confidence, strategy, outcomes, answer, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.Timestamp.UTC().Format(time.DateTime),
		entry.Query,
		string(caps),
		entry.Rationale,
		entry.Confidence,
		string(entry.Strategy),
		string(outcomes),
		entry.Answer,
		entry.ElapsedMS,
	)
	if err != nil {
		return "", fmt.Errorf("inserting request log entry: %w", err)
	}

	if err := s.evict(ctx); err != nil {
		return "", err
	}
	return entry.RequestID, nil
}

// evict drops the oldest entries beyond the cap.
func (s *Store) evict(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM request_log WHERE seq NOT IN (
			SELECT seq FROM request_log ORDER BY seq DESC LIMIT ?
		)`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("evicting old request log entries: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, timestamp, query, capabilities, rationale,
			   confidence, strategy, outcomes, answer, elapsed_ms
		FROM request_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying request log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			ts           string
			capsJSON     string
			strategy     string
			outcomesJSON string
		)
		if err := rows.Scan(&e.RequestID, &ts, &e.Query, &capsJSON, &e.Rationale,
			&e.Confidence, &strategy, &outcomesJSON, &e.Answer, &e.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scanning request log entry: %w", err)
		}
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			e.Timestamp = t
		}
		e.Strategy = router.Strategy(strategy)
		if err := json.Unmarshal([]byte(capsJSON), &e.Capabilities); err != nil {
			e.Capabilities = nil
		}
		if err := json.Unmarshal([]byte(outcomesJSON), &e.Outcomes); err != nil {
			e.Outcomes = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByID retrieves a single entry by request id, or nil if none exists.
func (s *Store) GetByID(ctx context.Context, requestID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT request_id, timestamp, query, capabilities, rationale,
			   confidence, strategy, outcomes, answer, elapsed_ms
		FROM request_log WHERE request_id = ?`, requestID)

	var (
		e            Entry
		ts           string
		capsJSON     string
		strategy     string
		outcomesJSON string
	)
	err := row.Scan(&e.RequestID, &ts, &e.Query, &capsJSON, &e.Rationale,
		&e.Confidence, &strategy, &outcomesJSON, &e.Answer, &e.ElapsedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying request %s: %w", requestID, err)
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	}
	e.Strategy = router.Strategy(strategy)
	if err := json.Unmarshal([]byte(capsJSON), &e.Capabilities); err != nil {
		e.Capabilities = nil
	}
	if err := json.Unmarshal([]byte(outcomesJSON), &e.Outcomes); err != nil {
		e.Outcomes = nil
	}
	return &e, nil
}

// Stats aggregates counts across the retained log.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	entries, err := s.Recent(ctx, s.maxEntries)
	if err != nil {
		return nil, err
	}

	stats := &Stats{CapabilityUsage: make(map[capability.ID]int)}
	if len(entries) == 0 {
		return stats, nil
	}

	var totalMS int64
	successful := 0
	for _, e := range entries {
		for _, c := range e.Capabilities {
			stats.CapabilityUsage[c]++
		}
		totalMS += e.ElapsedMS

		allOK := len(e.Outcomes) > 0
		for _, o := range e.Outcomes {
			if !o.Success {
				allOK = false
				break
			}
		}
		if allOK {
			successful++
		}
	}

	stats.TotalRequests = len(entries)
	stats.SuccessRate = float64(successful) / float64(len(entries)) * 100
	stats.AvgElapsedMS = float64(totalMS) / float64(len(entries))
	return stats, nil
}
