package errlog

import "regexp"

// CensorRule is one polarity/pattern pair of the censoring configuration
// ("--filtering ... applies a ... per-issue censor rule
// (polarity pair matching regexes over bug_type and filename, yielding a
// human reason)").
type CensorRule struct {
	Suppress  bool // true = a suppress rule, false = an allow rule
	BugType   *regexp.Regexp
	File      *regexp.Regexp
	Reason    string
}

func (r CensorRule) matches(i Issue) bool {
	if r.BugType != nil && !r.BugType.MatchString(i.BugType) {
		return false
	}
	if r.File != nil && !r.File.MatchString(i.File) {
		return false
	}
	return true
}

// Censor holds the suppress/allow rule sets a run was configured with.
type Censor struct {
	Suppress []CensorRule
	Allow    []CensorRule
}

// ShouldReport decides whether an issue survives censoring, resolving the
// polarity ambiguity flags explicitly: an issue is reported iff
// it matches no suppress pattern, AND (the allow-pattern set is empty OR
// it matches at least one allow pattern). Empty-allow means "allow all
// not suppressed". On rejection, the second return value is the
// human-readable reason to attach as Issue.CensoredReason.
func (c Censor) ShouldReport(i Issue) (bool, string) {
	for _, rule := range c.Suppress {
		if rule.matches(i) {
			return false, rule.Reason
		}
	}
	if len(c.Allow) == 0 {
		return true, ""
	}
	for _, rule := range c.Allow {
		if rule.matches(i) {
			return true, ""
		}
	}
	return false, "no allow rule matched"
}

// Apply runs ShouldReport and, on rejection, stamps CensoredReason onto a
// copy of the issue rather than dropping it outright — a censored issue
// is still recorded (with its reason) for --developer-mode auditing, just
// excluded from the primary issues stream.
func (c Censor) Apply(i Issue) (Issue, bool) {
	ok, reason := c.ShouldReport(i)
	if !ok {
		i.CensoredReason = reason
	}
	return i, ok
}
