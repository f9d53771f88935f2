package errlog

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Log is the per-run error log, guarded by a mutex since independent worker goroutines
// (internal/orchestrate) each report into the same Log instance owned by
// their caller.
type Log struct {
	mu     sync.Mutex
	byKey  map[string]Issue
	censor Censor
}

// NewLog returns an empty log with the given censor configuration.
func NewLog(censor Censor) *Log {
	return &Log{byKey: make(map[string]Issue), censor: censor}
}

// Report records an issue, applying censoring; returns whether it was
// kept in the primary (uncensored) view.
func (l *Log) Report(i Issue) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	stamped, ok := l.censor.Apply(i)
	l.byKey[stamped.Key] = stamped
	return ok
}

// Issues returns every recorded issue (including censored ones, callers
// filter with Kept if they only want the reportable subset), sorted by
// key for deterministic JSON output.
func (l *Log) Issues() []Issue {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Issue, 0, len(l.byKey))
	for _, i := range l.byKey {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}

// Kept returns only the issues that survived censoring.
func (l *Log) Kept() []Issue {
	var out []Issue
	for _, i := range l.Issues() {
		if i.CensoredReason == "" {
			out = append(out, i)
		}
	}
	return out
}

// WriteJSONStream writes the primary issues to w, one JSON object per line.
func (l *Log) WriteJSONStream(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, i := range l.Kept() {
		if err := enc.Encode(i); err != nil {
			return err
		}
	}
	return nil
}
