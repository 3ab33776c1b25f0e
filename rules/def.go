// Package rules defines rewrite rules as before/after example pairs and
// compiles them for the core engine. Rules come from three surfaces: the
// Def value API, declarative rule files, and the builtin catalog.
package rules

import (
	"github.com/termfx/refx/core"
)

// Def declares one rewrite rule as a pair of example fragments.
type Def struct {
	Name   string
	Params []Param
	Before string
	After  string
}

// Param declares one placeholder of a Def. A nil Constraint admits any
// node.
type Param struct {
	Name       string
	Constraint core.Constraint
}

// Compile compiles one definition into an engine rule.
func Compile(def Def) (*core.Rule, error) {
	ph := make([]core.Placeholder, len(def.Params))
	for i, p := range def.Params {
		ph[i] = core.Placeholder{Name: p.Name, Constraint: p.Constraint}
	}
	return core.CompileRule(def.Name, def.Before, def.After, ph)
}

// CompileAll compiles defs in order, skipping any whose name appears in
// excluded. Exclusion names with no matching def are ignored. The first
// compile failure aborts the whole batch.
func CompileAll(defs []Def, excluded []string) ([]*core.Rule, error) {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	out := make([]*core.Rule, 0, len(defs))
	for _, def := range defs {
		if skip[def.Name] {
			continue
		}
		r, err := Compile(def)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
