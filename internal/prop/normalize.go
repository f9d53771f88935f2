package prop

import "github.com/biabductor/biabductor/internal/term"

// Normalize restores the substitution and duplicate-free parts of the
// Prop invariants: applies Sub to every atom/hpred of Sigma/Pi so the
// result is already substitution-fixed, and drops duplicate atoms and
// duplicate hpreds (compared by their rendering). It neither removes nor
// flags a self-contradictory atom such as a disequality e != e; deciding
// inconsistency is the prover's job (CheckInconsistency).
func Normalize(p *Prop) *Prop {
	fixed := p.Apply(p.Sub) // Sub is idempotent, so composing it with itself leaves it unchanged
	fixed.Pi = dedupAtoms(fixed.Pi)
	fixed.Sigma = dedupHpreds(fixed.Sigma)
	return fixed
}

func dedupAtoms(atoms []Atom) []Atom {
	out := make([]Atom, 0, len(atoms))
	seen := make(map[string]bool)
	for _, a := range atoms {
		key := a.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func dedupHpreds(hs []Hpred) []Hpred {
	out := make([]Hpred, 0, len(hs))
	seen := make(map[string]bool)
	for _, h := range hs {
		key := h.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

// IsNormalForm checks the syntactic part of the Prop normal-form
// invariant: re-applying Sub is a no-op and no atom is
// duplicated.
func IsNormalForm(p *Prop) bool {
	again := p.Apply(p.Sub)
	if len(again.Sigma) != len(p.Sigma) || len(again.Pi) != len(p.Pi) {
		return false
	}
	for i := range p.Sigma {
		if p.Sigma[i].String() != again.Sigma[i].String() {
			return false
		}
	}
	for i := range p.Pi {
		if p.Pi[i].String() != again.Pi[i].String() {
			return false
		}
	}
	return len(dedupAtoms(p.Pi)) == len(p.Pi)
}

// CheckFootprintDiscipline verifies the "footprint discipline"
// invariant: every free identifier of SigmaFP/PiFP is Footprint-kind.
func CheckFootprintDiscipline(p *Prop) bool {
	for _, id := range p.FreeVarsFP() {
		if !id.IsFootprint() {
			return false
		}
	}
	return true
}
