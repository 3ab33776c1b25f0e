package rules

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/termfx/refx/core"
)

// ParseFile reads path and parses it with ParseRules.
func ParseFile(path string) ([]Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(string(data), path)
}

// ParseRules parses the declarative rule format. Each rule is one
// section:
//
//	[drop-zero]
//	params = x, c: integer
//	before = x + 0
//	after = x
//
// params entries are NAME or NAME: CONSTRAINT, where CONSTRAINT is one
// of any, integer, float, string, boolean, none, builtin, constant,
// truthy, falsey. Values run to end of line, so templates may contain
// = and #. Lines whose first character is # or ; are comments. origin
// names the source in error messages.
func ParseRules(src, origin string) ([]Def, error) {
	var (
		defs []Def
		cur  *block
		seen = map[string]bool{}
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		if err := cur.validate(); err != nil {
			return err
		}
		defs = append(defs, cur.def)
		return nil
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, ";") {
			continue
		}

		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, fmt.Errorf("rules: %s:%d: unterminated section header", origin, line)
			}
			name := strings.TrimSpace(text[1 : len(text)-1])
			if name == "" {
				return nil, fmt.Errorf("rules: %s:%d: empty rule name", origin, line)
			}
			if seen[name] {
				return nil, fmt.Errorf("rules: %s:%d: duplicate rule %q", origin, line, name)
			}
			seen[name] = true
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &block{def: Def{Name: name}}
			continue
		}

		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("rules: %s:%d: expected key = value", origin, line)
		}
		if cur == nil {
			return nil, fmt.Errorf("rules: %s:%d: key outside a [rule] section", origin, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "params":
			if cur.hasParams {
				return nil, fmt.Errorf("rules: %s:%d: duplicate params key", origin, line)
			}
			cur.hasParams = true
			params, err := parseParams(value)
			if err != nil {
				return nil, fmt.Errorf("rules: %s:%d: %v", origin, line, err)
			}
			cur.def.Params = params
		case "before":
			cur.idents = append(cur.idents, "before")
			cur.def.Before = value
		case "after":
			cur.idents = append(cur.idents, "after")
			cur.def.After = value
		default:
			return nil, fmt.Errorf("rules: %s:%d: unknown key %q", origin, line, key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("rules: %s: %w", origin, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return defs, nil
}

type block struct {
	def       Def
	idents    []string // before/after key occurrences in source order
	hasParams bool
}

// validate enforces exactly one before and one after per section.
func (b *block) validate() error {
	var before, after int
	for _, id := range b.idents {
		if id == "before" {
			before++
		} else {
			after++
		}
	}
	if before != 1 || after != 1 {
		return &core.RuleArityError{Rule: b.def.Name, Idents: b.idents}
	}
	return nil
}

func parseParams(value string) ([]Param, error) {
	if value == "" {
		return nil, nil
	}
	var params []Param
	seen := map[string]bool{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return nil, fmt.Errorf("empty parameter entry")
		}
		name, cname, constrained := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid parameter name %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate parameter %q", name)
		}
		seen[name] = true
		p := Param{Name: name}
		if constrained {
			cname = strings.TrimSpace(cname)
			ctor, ok := constraintTable[cname]
			if !ok {
				return nil, fmt.Errorf("unknown constraint %q", cname)
			}
			p.Constraint = ctor()
		}
		params = append(params, p)
	}
	return params, nil
}
