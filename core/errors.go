package core

import (
	"fmt"
	"strings"
)

// RuleArityError reports a rule definition that does not contain exactly
// one before/after pair.
type RuleArityError struct {
	Rule   string
	Idents []string
}

func (e *RuleArityError) Error() string {
	found := "none"
	if len(e.Idents) > 0 {
		found = strings.Join(e.Idents, ", ")
	}
	return fmt.Sprintf("rule %q must define exactly one before/after pair, found: %s",
		e.Rule, found)
}

// MissingTemplateError reports a rule whose before or after half is
// absent or empty.
type MissingTemplateError struct {
	Rule    string
	Missing string // "before" or "after"
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("rule %q: expected both before and after to be defined, missing %s",
		e.Rule, e.Missing)
}

// UnusedPlaceholderError reports a declared placeholder that never
// occurs in the rule's before template.
type UnusedPlaceholderError struct {
	Name     string
	Rule     string
	Position int // zero-based position in the declaration list
}

func (e *UnusedPlaceholderError) Error() string {
	return fmt.Sprintf("unused placeholder %q in rule %q (parameter %d)",
		e.Name, e.Rule, e.Position)
}

// ForbiddenWildcardError reports a before template that consists of a
// single unconstrained placeholder. Such a pattern matches every node of
// every kind and would rewrite the whole tree.
type ForbiddenWildcardError struct {
	Rule string
}

func (e *ForbiddenWildcardError) Error() string {
	return fmt.Sprintf("unconstrained placeholder is forbidden at top level in %q", e.Rule)
}

// TemplateError reports a before or after fragment that did not parse or
// does not form a usable template.
type TemplateError struct {
	Rule string
	Part string // "before" or "after"
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("rule %q: invalid %s template: %v", e.Rule, e.Part, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
