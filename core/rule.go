package core

import (
	"fmt"
	"strings"

	"github.com/termfx/refx/pycst"
)

// Placeholder declares one named wildcard of a rule pattern.
type Placeholder struct {
	Name       string
	Constraint Constraint // nil admits any node
}

// Rule is a compiled rewrite: a pattern over one node kind and the
// template that replaces a matching node.
type Rule struct {
	Name     string
	matcher  Matcher
	template pycst.Node
	kind     string
}

// Kind returns the node kind the rule's pattern dispatches on.
func (r *Rule) Kind() string { return r.kind }

// Matcher returns the compiled before pattern.
func (r *Rule) Matcher() Matcher { return r.matcher }

// Apply matches node and, on success, returns the instantiated
// replacement carrying node's leading trivia and any parentheses the
// insertion point requires. It returns node unchanged when the rule
// does not apply.
func (r *Rule) Apply(node pycst.Node) (pycst.Node, bool) {
	b, ok := Extract(r.matcher, node)
	if !ok {
		return node, false
	}
	out := instantiate(r.template, b)
	if e, isExpr := out.(pycst.Expr); isExpr && NeedsParensVersus(e, node) {
		out = pycst.WrapParens(e)
	}
	return pycst.WithLead(out, pycst.LeadOf(node)), true
}

// CompileRule compiles a before/after template pair into a Rule. Each
// template must parse as a single expression or a single statement and
// both halves must be the same syntactic category. Placeholders are
// declared in order; the order is reported by UnusedPlaceholderError.
func CompileRule(name, before, after string, placeholders []Placeholder) (*Rule, error) {
	if strings.TrimSpace(before) == "" {
		return nil, &MissingTemplateError{Rule: name, Missing: "before"}
	}
	if strings.TrimSpace(after) == "" {
		return nil, &MissingTemplateError{Rule: name, Missing: "after"}
	}

	beforeNode, beforeStmt, err := parseTemplate(before)
	if err != nil {
		return nil, &TemplateError{Rule: name, Part: "before", Err: err}
	}
	afterNode, afterStmt, err := parseTemplate(after)
	if err != nil {
		return nil, &TemplateError{Rule: name, Part: "after", Err: err}
	}
	if beforeStmt != afterStmt {
		return nil, &TemplateError{Rule: name, Part: "after",
			Err: fmt.Errorf("before and after must be the same syntactic category")}
	}

	table := make(map[string]Constraint, len(placeholders))
	for _, ph := range placeholders {
		if _, dup := table[ph.Name]; dup {
			return nil, &TemplateError{Rule: name, Part: "before",
				Err: fmt.Errorf("placeholder %q declared twice", ph.Name)}
		}
		table[ph.Name] = ph.Constraint
	}

	c := &matcherCompiler{placeholders: table}
	m, err := c.compile(beforeNode)
	if err != nil {
		return nil, &TemplateError{Rule: name, Part: "before", Err: err}
	}

	switch top := m.(type) {
	case anything:
		return nil, &ForbiddenWildcardError{Rule: name}
	case *capture:
		if top.constraint == nil {
			return nil, &ForbiddenWildcardError{Rule: name}
		}
	}

	for i, ph := range placeholders {
		if !c.used[ph.Name] {
			return nil, &UnusedPlaceholderError{Name: ph.Name, Rule: name, Position: i}
		}
	}

	return &Rule{Name: name, matcher: m, template: afterNode, kind: pycst.KindOf(beforeNode)}, nil
}

// parseTemplate parses a rule fragment as one statement. A bare
// expression statement unwraps to the expression itself so expression
// rules match anywhere, not only at statement level.
func parseTemplate(src string) (pycst.Node, bool, error) {
	m, err := pycst.Parse(src)
	if err != nil {
		return nil, false, err
	}
	if len(m.Body) != 1 {
		return nil, false, fmt.Errorf("expected exactly one statement, found %d", len(m.Body))
	}
	if es, ok := m.Body[0].(*pycst.ExprStmt); ok {
		return es.Value, false, nil
	}
	return m.Body[0], true, nil
}
