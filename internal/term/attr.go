package term

import "fmt"

// ResourceKind enumerates the resource families an Aresource attribute can
// track.
type ResourceKind int

const (
	Rmemory ResourceKind = iota
	Rfile
	Rlock
)

func (r ResourceKind) String() string {
	switch r {
	case Rmemory:
		return "memory"
	case Rfile:
		return "file"
	case Rlock:
		return "lock"
	default:
		return "resource"
	}
}

// ResourceAction distinguishes acquire from release within an Aresource
// attribute.
type ResourceAction int

const (
	Racquire ResourceAction = iota
	Rrelease
)

func (a ResourceAction) String() string {
	if a == Racquire {
		return "acquire"
	}
	return "release"
}

// Loc is a source location, reused across attributes, instructions and
// error traces.
type Loc struct {
	File   string
	Line   int
	Column int
}

func (l Loc) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Attr is the closed set of non-shape facts ("attributes") that can be
// attached to an expression via a pseudo-atom `e != Cattribute(a)`.
type Attr interface {
	isAttr()
	String() string
	// Key identifies the attribute family so that "at most one instance
	// per expression" can be enforced per family rather than per exact
	// value.
	Key() string
}

// Aresource records that an expression denotes a resource currently
// acquired or released, along with the call site that put it in that
// state (used to attribute leaks/double-frees to a procedure+location).
type Aresource struct {
	Action ResourceAction
	Res    ResourceKind
	Pname  string // owning procedure name
	At     Loc
	Vpath  string // value path, e.g. "this.conn"
}

func (Aresource) isAttr() {}
func (a Aresource) Key() string { return "resource" }
func (a Aresource) String() string {
	return fmt.Sprintf("Aresource{%s %s@%s %s}", a.Action, a.Res, a.At, a.Pname)
}

// Adangling marks an expression as a dangling pointer (freed-then-aliased,
// or otherwise known invalid without a specific resource record).
type Adangling struct{}

func (Adangling) isAttr()      {}
func (Adangling) Key() string  { return "dangling" }
func (Adangling) String() string { return "Adangling" }

// Aundef marks an expression as the result of a call whose effect the
// analysis chose not to model ("skipped"); fn names the callee.
type Aundef struct{ Fn string }

func (Aundef) isAttr()      {}
func (Aundef) Key() string  { return "undef" }
func (a Aundef) String() string { return fmt.Sprintf("Aundef(%s)", a.Fn) }

// Ataint and Auntaint record data-flow taint for the taint checker
//.
type Ataint struct{ Source string }

func (Ataint) isAttr()      {}
func (Ataint) Key() string  { return "taint" }
func (a Ataint) String() string { return "Ataint(" + a.Source + ")" }

type Auntaint struct{}

func (Auntaint) isAttr()      {}
func (Auntaint) Key() string  { return "taint" }
func (Auntaint) String() string { return "Auntaint" }

// Aretval tags an expression as the memoized result of a callee believed
// to be a pure/idempotent getter.
type Aretval struct{ Callee string }

func (Aretval) isAttr()      {}
func (Aretval) Key() string  { return "retval" }
func (a Aretval) String() string { return "Aretval(" + a.Callee + ")" }

// Adiv0 marks an expression proven to be a division-by-zero divisor.
type Adiv0 struct{}

func (Adiv0) isAttr()      {}
func (Adiv0) Key() string  { return "div0" }
func (Adiv0) String() string { return "Adiv0" }

// Aobjc_null marks an Objective-C "nil-messaging" receiver, which is
// valid (a no-op returning zero) rather than an error, distinguishing it
// from a C/C++/Java null dereference.
type AobjcNull struct{}

func (AobjcNull) isAttr()      {}
func (AobjcNull) Key() string  { return "objc_null" }
func (AobjcNull) String() string { return "Aobjc_null" }

// Nullable marks an expression as sourced from an @Nullable-annotated
// field or parameter.
type Nullable struct{ Source string }

func (Nullable) isAttr()      {}
func (Nullable) Key() string  { return "nullable" }
func (a Nullable) String() string { return "Nullable(" + a.Source + ")" }
