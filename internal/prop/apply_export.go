package prop

import "github.com/biabductor/biabductor/internal/term"

// ApplyHpred exposes the package-private hpred substitution helper for
// callers (rearrangement's segment unfolding) that need to instantiate an
// Hpara/HparaDll body template with concrete root/next actuals.
func ApplyHpred(h Hpred, s *term.Sub) Hpred {
	return applyHpred(h, s)
}
