package symexec

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// navigate walks a materialized strexp along an already-satisfied offset
// path, returning the leaf strexp at the end. Rearrange leaves the whole
// struct/array as a single Hpointsto (fields and elements nest inside its
// strexp rather than becoming separate sigma entries), so finding the
// value a Load should bind, or the cell a Store should replace, means
// re-walking the same offsets rearrangement already proved present.
func navigate(se prop.Strexp, offsets []term.Offset) (prop.Strexp, bool) {
	cur := se
	for _, off := range offsets {
		switch o := off.(type) {
		case term.OffFld:
			st, ok := cur.(prop.Estruct)
			if !ok {
				return nil, false
			}
			v, present := st.Get(o.Field)
			if !present {
				return nil, false
			}
			cur = v
		case term.OffIndex:
			arr, ok := cur.(prop.Earray)
			if !ok {
				return nil, false
			}
			v, present := arr.At(o.Index)
			if !present {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// withLeaf rebuilds se with the strexp at offsets replaced by newLeaf,
// the read/write dual of navigate, used by Store.
func withLeaf(se prop.Strexp, offsets []term.Offset, newLeaf prop.Strexp) (prop.Strexp, bool) {
	if len(offsets) == 0 {
		return newLeaf, true
	}
	off := offsets[0]
	rest := offsets[1:]
	switch o := off.(type) {
	case term.OffFld:
		st, ok := se.(prop.Estruct)
		if !ok {
			return nil, false
		}
		child, present := st.Get(o.Field)
		if !present {
			return nil, false
		}
		updated, ok := withLeaf(child, rest, newLeaf)
		if !ok {
			return nil, false
		}
		return st.With(o.Field, updated), true
	case term.OffIndex:
		arr, ok := se.(prop.Earray)
		if !ok {
			return nil, false
		}
		child, present := arr.At(o.Index)
		if !present {
			return nil, false
		}
		updated, ok := withLeaf(child, rest, newLeaf)
		if !ok {
			return nil, false
		}
		return arr.With(o.Index, updated), true
	default:
		return nil, false
	}
}
