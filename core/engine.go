// Package core implements structural rewriting of Python syntax trees.
// A Rule pairs a compiled pattern with a replacement template; an
// Engine applies a fixed rule set bottom-up over a tree until no rule
// fires or a pass limit is reached. Matching is structural: literal
// spellings, grouping parentheses and whitespace never decide a match,
// and repeated placeholders unify against structurally equal captures.
package core

import (
	"time"

	"github.com/termfx/refx/pycst"
)

// DefaultPassLimit bounds rule sets that keep feeding each other, such
// as x + y rewriting to y + x forever.
const DefaultPassLimit = 10

// Recorder observes every rule attempt. The duration covers the match
// and, when it succeeded, the substitution. A Recorder shared across
// goroutines must be safe for concurrent use.
type Recorder func(rule string, duration time.Duration, matched bool)

// Engine applies a fixed rule set to trees. It is immutable after
// construction and safe for concurrent use across goroutines.
type Engine struct {
	dispatch map[string][]*Rule
	passes   int
	rec      Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithPassLimit overrides DefaultPassLimit. Values below one run a
// single pass.
func WithPassLimit(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.passes = n
	}
}

// WithRecorder sets the attempt observer.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) { e.rec = rec }
}

// NewEngine builds the kind dispatch table once. At each node the rules
// whose pattern root has that node's kind are tried in the given order.
func NewEngine(rules []*Rule, opts ...Option) *Engine {
	e := &Engine{dispatch: make(map[string][]*Rule, len(rules)), passes: DefaultPassLimit}
	for _, r := range rules {
		e.dispatch[r.kind] = append(e.dispatch[r.kind], r)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one Rewrite.
type Result struct {
	Tree     *pycst.Module
	Modified bool
	Passes   int
}

// Rewrite applies the rule set to module until a pass changes nothing
// or the pass limit is reached. The input tree is never mutated. When
// no rule ever fires the returned Tree is module itself and Modified is
// false, so callers can skip reserialization.
func (e *Engine) Rewrite(module *pycst.Module) Result {
	tree := pycst.Node(module)
	modified := false
	passes := 0
	for passes < e.passes {
		passes++
		next, changed := e.rewriteNode(tree)
		if !changed {
			break
		}
		modified = true
		tree = next
	}
	return Result{Tree: tree.(*pycst.Module), Modified: modified, Passes: passes}
}

// rewriteNode rewrites children first, then tries the rules registered
// for the node's kind. The first rule that fires wins the position for
// this pass and its replacement is not revisited until the next pass.
func (e *Engine) rewriteNode(n pycst.Node) (pycst.Node, bool) {
	out, changed := pycst.MapChildren(n, func(child pycst.Node) pycst.Node {
		nc, _ := e.rewriteNode(child)
		return nc
	})
	for _, r := range e.dispatch[pycst.KindOf(out)] {
		start := time.Now()
		repl, ok := r.Apply(out)
		if e.rec != nil {
			e.rec(r.Name, time.Since(start), ok)
		}
		if ok {
			return repl, true
		}
	}
	return out, changed
}
