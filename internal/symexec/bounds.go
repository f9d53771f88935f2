package symexec

import (
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/term"
)

// reportArrayBounds walks the same offsets Rearrange already proved
// satisfiable and, for each array index access along the way, asks the
// prover how confidently it is in-bounds. BoundsL1 never reaches here —
// Rearrange already discarded that path as infeasible — so this only
// ever promotes L2/L3 uncertainty into a diagnosable issue.
func (e *Executor) reportArrayBounds(it *prop.Iter, se prop.Strexp, offsets []term.Offset, loc term.Loc) {
	cur := se
	for _, off := range offsets {
		switch o := off.(type) {
		case term.OffFld:
			st, ok := cur.(prop.Estruct)
			if !ok {
				return
			}
			v, ok := st.Get(o.Field)
			if !ok {
				return
			}
			cur = v
		case term.OffIndex:
			arr, ok := cur.(prop.Earray)
			if !ok {
				return
			}
			switch e.Rearranger.CheckBounds(it, arr.Size, o.Index) {
			case rearrange.BoundsL2:
				e.reportBoundsIssue(errlog.KindArrayOutOfBoundsL2, loc)
			case rearrange.BoundsL3:
				e.reportBoundsIssue(errlog.KindArrayOutOfBoundsL3, loc)
			}
			v, ok := arr.At(o.Index)
			if !ok {
				return
			}
			cur = v
		default:
			return
		}
	}
}

func (e *Executor) reportBoundsIssue(kind errlog.Kind, loc term.Loc) {
	issue := errlog.New(kind, e.Proc, e.ProcStart, loc.File, loc.Line, loc.Column).
		WithQualifier("array index not provably in bounds").
		WithSeverity(errlog.DefaultSeverity(kind)).
		Build()
	e.Log.Report(issue)
}
