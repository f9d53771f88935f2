package errlog

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// tempVarPattern strips the stamp suffix off a rendered term.Ident
// ("n$12", "x'7", "x^8") so that renaming a temporary across two
// otherwise-identical runs does not change the hash. Path-kind
// identifiers ("#p3") carry no separator before their stamp and are left
// unchanged.
var tempVarPattern = regexp.MustCompile(`[$'^]\d+`)

// linePattern strips bare decimal numbers from a qualifier string, the
// "line-stripped-qualifier" names explicitly.
var linePattern = regexp.MustCompile(`\b\d+\b`)

// hashableProc normalizes a procedure name by dropping identifier stamp
// suffixes ("$3", "'3", "^3") with the same pattern as tempVarPattern's
// other uses; any other part of the name, including digits, is kept.
func hashableProc(proc string) string {
	return tempVarPattern.ReplaceAllString(proc, "")
}

// stripLineNoise removes both the stamp suffixes and line numbers from a
// qualifier string.
func stripLineNoise(s string) string {
	s = tempVarPattern.ReplaceAllString(s, "")
	return linePattern.ReplaceAllString(s, "#")
}

// ComputeHash computes the issue hash: "(severity, bug_type,
// hashable_proc, basename, line-stripped-qualifier)". It must be
// (and, by construction here, is) invariant under renaming a temporary
// identifier or shifting a line number, since neither contributes raw to
// the hashed tuple.
func ComputeHash(i Issue) string {
	base := i.File
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	parts := []string{
		i.Severity.String(),
		i.BugType,
		hashableProc(i.Procedure),
		base,
		stripLineNoise(i.Qualifier),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
