package prop

import "github.com/biabductor/biabductor/internal/term"

// Iter focuses one hpred of a Prop's sigma for rearrangement: the hpreds
// before the focused one, the focused hpred itself, the hpreds after it,
// plus the prop's pi/sub/footprint and an offset-path State recording how
// rearrangement reached curr.
type Iter struct {
	Before  []Hpred
	Curr    Hpred
	After   []Hpred
	Pi      []Atom
	Sub     *term.Sub
	SigmaFP []Hpred
	PiFP    []Atom
	State   []term.Offset
}

// NewIter focuses hpred at index i of p.Sigma.
func NewIter(p *Prop, i int) *Iter {
	return &Iter{
		Before:  append([]Hpred(nil), p.Sigma[:i]...),
		Curr:    p.Sigma[i],
		After:   append([]Hpred(nil), p.Sigma[i+1:]...),
		Pi:      p.Pi,
		Sub:     p.Sub,
		SigmaFP: p.SigmaFP,
		PiFP:    p.PiFP,
	}
}

// Find returns an iterator focused on the first hpred matching pred, or
// nil if none match. This realizes `find(is_root(p, base, lexp))` from
// .
func Find(p *Prop, pred func(Hpred) bool) *Iter {
	for i, h := range p.Sigma {
		if pred(h) {
			return NewIter(p, i)
		}
	}
	return nil
}

// IsRoot builds the predicate calls `is_root(p, base, lexp)`:
// true when h's root expression is syntactically (modulo p.Sub, already
// applied) equal to base.
func IsRoot(base term.Expr) func(Hpred) bool {
	return func(h Hpred) bool { return term.Equal(h.Root(), base) }
}

// ToProp reassembles before/curr/after/pi/sub/footprint back into a Prop.
func (it *Iter) ToProp() *Prop {
	sigma := make([]Hpred, 0, len(it.Before)+1+len(it.After))
	sigma = append(sigma, it.Before...)
	sigma = append(sigma, it.Curr)
	sigma = append(sigma, it.After...)
	return &Prop{Sigma: sigma, Pi: it.Pi, SigmaFP: it.SigmaFP, PiFP: it.PiFP, Sub: it.Sub}
}

// UpdateCurrent replaces the focused hpred in place.
func (it *Iter) UpdateCurrent(h Hpred) *Iter {
	next := *it
	next.Curr = h
	return &next
}

// PrevThenInsert moves focus to a newly-inserted hpred placed immediately
// before the current one, pushing the old current into After. Used when
// rearrangement synthesizes a fresh footprint hpred and wants to keep
// iterating on it.
func (it *Iter) PrevThenInsert(h Hpred) *Iter {
	next := *it
	next.Curr = h
	next.After = append([]Hpred{it.Curr}, it.After...)
	return &next
}

// RemoveCurrThenToProp drops the focused hpred entirely and reassembles a
// Prop from the rest — used by the Hlseg(PE) `e_from = e_to` base case
// where the empty segment contributes nothing to sigma.
func (it *Iter) RemoveCurrThenToProp() *Prop {
	sigma := make([]Hpred, 0, len(it.Before)+len(it.After))
	sigma = append(sigma, it.Before...)
	sigma = append(sigma, it.After...)
	return &Prop{Sigma: sigma, Pi: it.Pi, SigmaFP: it.SigmaFP, PiFP: it.PiFP, Sub: it.Sub}
}

// WithOffset extends the recorded offset path, documenting how far into
// lexp's offset list this iterator has materialized.
func (it *Iter) WithOffset(o term.Offset) *Iter {
	next := *it
	next.State = append(append([]term.Offset(nil), it.State...), o)
	return &next
}
