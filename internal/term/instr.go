package term

// Instr is the per-node instruction set the symbolic executor transfers
// over. Dispatch over this closed set maps to a Go type switch with
// exhaustive cases, the same dispatch-over-tagged-variant style as
// internal/ir's instruction lowering switch.
type Instr interface {
	isInstr()
	At() Loc
}

// CallFlags records call-site modifiers the executor and tabulation need.
type CallFlags struct {
	Virtual     bool // dynamic dispatch; candidate set resolved by caller
	NoReturn    bool
	InjectedBy  string // set when the front-end synthesized this call (e.g. destructor)
}

type Load struct {
	Id   Ident
	Lexp Expr
	Typ  Type
	Loc  Loc
}

func (Load) isInstr()     {}
func (l Load) At() Loc    { return l.Loc }

type Store struct {
	Lexp Expr
	Typ  Type
	Rhs  Expr
	Loc  Loc
}

func (Store) isInstr()  {}
func (s Store) At() Loc { return s.Loc }

type Prune struct {
	Cond        Expr
	TrueBranch  bool
	Loc         Loc
}

func (Prune) isInstr()  {}
func (p Prune) At() Loc { return p.Loc }

// RetBinding is one (callee formal position | field name) -> caller id
// binding for a (possibly multi-return) call result.
type RetBinding struct {
	Id    Ident
	Field string // empty for a single-return call
}

type Call struct {
	Rets  []RetBinding
	Fexp  Expr
	Args  []Expr
	ArgTs []Type
	Loc   Loc
	Flags CallFlags
}

func (Call) isInstr()  {}
func (c Call) At() Loc { return c.Loc }

type Nullify struct {
	Pvar Pvar
	Loc  Loc
}

func (Nullify) isInstr()  {}
func (n Nullify) At() Loc { return n.Loc }

type Abstract struct{ Loc Loc }

func (Abstract) isInstr()  {}
func (a Abstract) At() Loc { return a.Loc }

// GotoNode annotates successor-node selection; the worklist, not the
// executor, actually performs the jump, but the instruction stream can
// carry one as the last element of a block for trace-printing purposes.
type GotoNode struct {
	NodeID string
	Loc    Loc
}

func (GotoNode) isInstr()  {}
func (g GotoNode) At() Loc { return g.Loc }
