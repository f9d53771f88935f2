// Package config carries the ambient state calls out as "global
// mutable state" in the source analyzer (phase flag, language, stamp
// counters, identifier generator, printer sink) reworked into an explicit
// context threaded through the pipeline, plus the CLI surface
// and the AnalysisFault control-flow sum (fault.go).
package config

import (
	"sync"

	"github.com/biabductor/biabductor/internal/term"
)

// Language is the source language of the procedure currently under
// analysis; it selects language-specific leak buckets and dereference
// conventions (e.g. Objective-C nil-messaging is not a fault).
type Language int

const (
	LangC Language = iota
	LangCpp
	LangObjC
	LangJava
)

func (l Language) String() string {
	switch l {
	case LangC:
		return "c"
	case LangCpp:
		return "cpp"
	case LangObjC:
		return "objc"
	case LangJava:
		return "java"
	default:
		return "unknown"
	}
}

// Phase is re-exported here (rather than only in internal/driver) so that
// config.Context can carry it as scoped, restorable state without driver
// importing config in a cycle; internal/driver's own Phase type converts
// to/from this one at its boundary.
type Phase int

const (
	PhaseFootprint Phase = iota
	PhaseReExecution
)

func (p Phase) String() string {
	if p == PhaseReExecution {
		return "re_execution"
	}
	return "footprint"
}

// Context is the AnalysisContext asks for: the scoped phase flag,
// current language, a process-local identifier generator, and the
// max-stamp/recursion bookkeeping every layer of the engine needs without
// reaching for package-level globals.
//
// A Context is not safe for concurrent use by itself; internal/orchestrate
// gives each worker process its own Context, matching "one OS
// process per analyzed procedure; shared state ... is persisted to disk
// and re-read, not shared in memory."
type Context struct {
	mu sync.Mutex

	phase    Phase
	lang     Language
	gen      *term.Generator
	flags    Flags
	recurse  map[string]int // procedure name -> current recursion depth
}

// NewContext returns a Context starting in the footprint phase.
func NewContext(lang Language, flags Flags) *Context {
	return &Context{
		phase:   PhaseFootprint,
		lang:    lang,
		gen:     term.NewGenerator(),
		flags:   flags,
		recurse: make(map[string]int),
	}
}

func (c *Context) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Context) SetPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
}

func (c *Context) Language() Language { return c.lang }
func (c *Context) Generator() *term.Generator { return c.gen }
func (c *Context) Flags() Flags { return c.flags }

// ScopedPhase runs fn with the phase temporarily set to p, restoring the
// previous phase on every exit path including a panic recovered and
// re-raised by the caller's own fault boundary (: "the
// footprint/re-execution flag is scoped (acquire-on-entry, release-on-
// exit, guaranteed even on fault paths)").
func (c *Context) ScopedPhase(p Phase, fn func() error) error {
	prev := c.Phase()
	c.SetPhase(p)
	defer c.SetPhase(prev)
	return fn()
}

// EnterRecursion increments proc's recursion depth and reports whether it
// now exceeds maxRecursion. The depth is incremented either way, so the
// caller must pair every EnterRecursion with ExitRecursion.
func (c *Context) EnterRecursion(proc string, maxRecursion int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recurse[proc]++
	return c.recurse[proc] > maxRecursion
}

// ExitRecursion decrements proc's recursion depth.
func (c *Context) ExitRecursion(proc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recurse[proc] > 0 {
		c.recurse[proc]--
	}
}
