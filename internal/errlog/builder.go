package errlog

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IssueBuilder is a fluent interface for assembling an Issue, mirroring
// internal/errors/semantic_errors.go's SemanticErrorBuilder, generalized
// from parse/type diagnostics to analysis defects.
type IssueBuilder struct {
	issue Issue
}

// New starts building an issue of the given taxonomy kind at a location.
func New(kind Kind, procedure string, procStartLine int, file string, line, column int) *IssueBuilder {
	return &IssueBuilder{issue: Issue{
		kind:               kind,
		BugType:            kind.String(),
		Severity:           DefaultSeverity(kind),
		File:               file,
		Line:               line,
		Column:             column,
		Procedure:          procedure,
		ProcedureStartLine: procStartLine,
	}}
}

// WithQualifier sets the human-readable one-line explanation.
func (b *IssueBuilder) WithQualifier(format string, args ...any) *IssueBuilder {
	b.issue.Qualifier = fmt.Sprintf(format, args...)
	return b
}

// WithSeverity overrides the taxonomy's default severity (e.g. a
// NullDereference sourced from a @Nullable field downgrades to Warning).
func (b *IssueBuilder) WithSeverity(s Severity) *IssueBuilder {
	b.issue.Severity = s
	return b
}

// WithTrace appends one bug_trace step.
func (b *IssueBuilder) WithTrace(step BugTraceStep) *IssueBuilder {
	step.Level = len(b.issue.BugTrace)
	b.issue.BugTrace = append(b.issue.BugTrace, step)
	return b
}

// WithNodeKey sets the node_key field, present when the issue is
// attributable to one specific CFG node.
func (b *IssueBuilder) WithNodeKey(key string) *IssueBuilder {
	b.issue.NodeKey = key
	return b
}

// WithAccess records the procedure's declared access level, used by
// --show-buckets reporting to separate public-API from internal defects.
func (b *IssueBuilder) WithAccess(access string) *IssueBuilder {
	b.issue.Access = access
	return b
}

// WithExtra adds one free-form extras entry.
func (b *IssueBuilder) WithExtra(key, value string) *IssueBuilder {
	if b.issue.Extras == nil {
		b.issue.Extras = make(map[string]string)
	}
	b.issue.Extras[key] = value
	return b
}

// Build finalizes the issue, computing its key and hash.
func (b *IssueBuilder) Build() Issue {
	i := b.issue
	i.Key = computeKey(i)
	i.Hash = ComputeHash(i)
	return i
}

// computeKey builds the "key (basename|proc|bug_type)" field.
func computeKey(i Issue) string {
	return strings.Join([]string{filepath.Base(i.File), i.Procedure, i.BugType}, "|")
}
