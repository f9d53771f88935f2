package term

// Sub is an idempotent substitution over normal/primed/footprint
// identifiers. The Prop invariant requires every live Sub to be
// idempotent: applying it twice is the same as applying it once.
type Sub struct {
	bindings map[Ident]Expr
}

// NewSub returns an empty substitution.
func NewSub() *Sub {
	return &Sub{bindings: make(map[Ident]Expr)}
}

// Extend returns a new substitution with id bound to e added, normalizing
// e through the existing bindings first so the result stays idempotent.
func (s *Sub) Extend(id Ident, e Expr) *Sub {
	next := &Sub{bindings: make(map[Ident]Expr, len(s.bindings)+1)}
	for k, v := range s.bindings {
		next.bindings[k] = v
	}
	next.bindings[id] = s.Apply(e)
	return next
}

// Lookup returns the binding for id, if any.
func (s *Sub) Lookup(id Ident) (Expr, bool) {
	e, ok := s.bindings[id]
	return e, ok
}

// Domain returns the identifiers this substitution binds.
func (s *Sub) Domain() []Ident {
	ids := make([]Ident, 0, len(s.bindings))
	for id := range s.bindings {
		ids = append(ids, id)
	}
	return ids
}

// Apply rewrites every Var in e that is bound by s, recursively.
func (s *Sub) Apply(e Expr) Expr {
	switch v := e.(type) {
	case Var:
		if bound, ok := s.bindings[v.Id]; ok {
			return bound
		}
		return v
	case UnOp:
		return UnOp{Op: v.Op, Expr: s.Apply(v.Expr), Typ: v.Typ}
	case BinOp:
		return BinOp{Op: v.Op, Left: s.Apply(v.Left), Right: s.Apply(v.Right)}
	case Cast:
		return Cast{Typ: v.Typ, Expr: s.Apply(v.Expr)}
	case Lfield:
		return Lfield{Base: s.Apply(v.Base), Field: v.Field, Typ: v.Typ}
	case Lindex:
		return Lindex{Base: s.Apply(v.Base), Index: s.Apply(v.Index)}
	default:
		return e // Const, Lvar, Sizeof carry no substitutable identifiers
	}
}

// Compose returns a substitution equivalent to applying s first, then
// other (⋈ in step 4: sub = sub1 ⋈ sub2).
func Compose(s, other *Sub) *Sub {
	result := NewSub()
	for id, e := range s.bindings {
		result.bindings[id] = other.Apply(e)
	}
	for id, e := range other.bindings {
		if _, already := result.bindings[id]; !already {
			result.bindings[id] = e
		}
	}
	return result
}

// FreeVars collects the identifiers occurring free in e.
func FreeVars(e Expr) []Ident {
	seen := make(map[Ident]bool)
	var out []Ident
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case Var:
			if !seen[v.Id] {
				seen[v.Id] = true
				out = append(out, v.Id)
			}
		case UnOp:
			walk(v.Expr)
		case BinOp:
			walk(v.Left)
			walk(v.Right)
		case Cast:
			walk(v.Expr)
		case Lfield:
			walk(v.Base)
		case Lindex:
			walk(v.Base)
			walk(v.Index)
		}
	}
	walk(e)
	return out
}
