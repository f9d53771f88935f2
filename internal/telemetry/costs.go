package telemetry

import (
	"encoding/json"
	"io"

	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/summary"
)

// HumanizedCost is the `hum` object of Costs output:
// `{hum_polynomial, hum_degree, big_o}`.
type HumanizedCost struct {
	HumPolynomial string `json:"hum_polynomial"`
	HumDegree     int    `json:"hum_degree"`
	BigO          string `json:"big_o"`
}

// ExecCost is `exec_cost` object: `{polynomial_version,
// polynomial, degree?, hum}`.
type ExecCost struct {
	PolynomialVersion int           `json:"polynomial_version"`
	Polynomial        string        `json:"polynomial"`
	Degree            *int          `json:"degree,omitempty"`
	Hum               HumanizedCost `json:"hum"`
}

// CostEntry is one record of Costs output stream, the parallel
// stream to Issues: `{hash, loc, procedure_name, procedure_id,
// is_on_ui_thread, exec_cost}`.
type CostEntry struct {
	Hash           string   `json:"hash"`
	Loc            string   `json:"loc"`
	ProcedureName  string   `json:"procedure_name"`
	ProcedureID    string   `json:"procedure_id"`
	IsOnUIThread   bool     `json:"is_on_ui_thread"`
	ExecCost       ExecCost `json:"exec_cost"`
}

// constantCost is the placeholder exec_cost every CostEntry carries:
// full cost inference (polynomial bound derivation from loop/recursion
// structure) is explicitly out of scope for this core, but the wire
// shape of the stream is still part of the external interface contract
//, so a constant-polynomial stand-in keeps a --results-dir
// consumer's costs.json parser exercised end to end.
var constantCost = ExecCost{
	PolynomialVersion: 1,
	Polynomial:        "1",
	Hum:               HumanizedCost{HumPolynomial: "1", HumDegree: 0, BigO: "O(1)"},
}

// CostsFromSummaries builds one stub CostEntry per analyzed procedure,
// keyed the same way Issues are (errlog.ComputeHash's hashable_proc
// input), so a --results-dir consumer can correlate a costs.json row
// with the issues.json rows for the same procedure.
func CostsFromSummaries(sums map[string]*summary.Summary) []CostEntry {
	entries := make([]CostEntry, 0, len(sums))
	for proc, sum := range sums {
		hash := errlog.ComputeHash(errlog.Issue{
			BugType:   "COST_ESTIMATE",
			Procedure: proc,
			File:      sum.Loc.File,
		})
		entries = append(entries, CostEntry{
			Hash:          hash,
			Loc:           sum.Loc.String(),
			ProcedureName: proc,
			ProcedureID:   proc,
			ExecCost:      constantCost,
		})
	}
	return entries
}

// WriteCostsJSONStream writes entries to w, one JSON object per line,
// matching errlog.Log.WriteJSONStream's framing for the parallel Issues
// stream.
func WriteCostsJSONStream(w io.Writer, entries []CostEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
