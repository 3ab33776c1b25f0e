package core

import (
	"fmt"
	"go/constant"
	"strings"

	"github.com/termfx/refx/pycst"
)

// Matcher tests a syntax tree node against a compiled pattern.
// Compiled matchers are immutable and safe for concurrent use;
// per-attempt state lives in the CaptureSet.
type Matcher interface {
	match(node pycst.Node, caps *CaptureSet) bool
}

// Constraint restricts which nodes a placeholder may capture.
type Constraint interface {
	Admits(node pycst.Node) bool
}

// ConstraintFunc adapts a plain function to the Constraint interface.
type ConstraintFunc func(pycst.Node) bool

// Admits implements Constraint.
func (f ConstraintFunc) Admits(n pycst.Node) bool { return f(n) }

// Bindings maps placeholder names to the nodes they captured.
type Bindings map[string]pycst.Node

// CaptureSet accumulates placeholder occurrences during one match
// attempt, in pattern order.
type CaptureSet struct {
	entries []captured
}

type captured struct {
	name string
	node pycst.Node
}

func (cs *CaptureSet) add(name string, node pycst.Node) {
	cs.entries = append(cs.entries, captured{name: name, node: node})
}

// reduce folds the occurrences into one binding per name. The first
// occurrence of each name is canonical; every later occurrence must
// match an exact pattern compiled from the canonical node, otherwise
// the whole attempt is rejected.
func (cs *CaptureSet) reduce() (Bindings, bool) {
	b := make(Bindings, len(cs.entries))
	for _, e := range cs.entries {
		canonical, seen := b[e.name]
		if !seen {
			b[e.name] = e.node
			continue
		}
		m, err := CompileMatcher(canonical, nil)
		if err != nil || !Matches(m, e.node) {
			return nil, false
		}
	}
	return b, true
}

// Matches reports whether node satisfies m, ignoring captures.
func Matches(m Matcher, node pycst.Node) bool {
	return m.match(node, nil)
}

// Extract matches node against m and reduces placeholder captures to
// consistent bindings. A repeated placeholder whose occurrences
// captured structurally different nodes fails the whole match.
func Extract(m Matcher, node pycst.Node) (Bindings, bool) {
	var caps CaptureSet
	if !m.match(node, &caps) {
		return nil, false
	}
	return caps.reduce()
}

// anything admits every node.
type anything struct{}

func (anything) match(pycst.Node, *CaptureSet) bool { return true }

// Anything returns a matcher admitting every node. It is rejected at
// the top of a rule pattern but usable as a building block.
func Anything() Matcher { return anything{} }

// capture admits what its constraint admits and records the node under
// the placeholder's name.
type capture struct {
	name       string
	constraint Constraint // nil admits any node
}

func (c *capture) match(n pycst.Node, caps *CaptureSet) bool {
	if c.constraint != nil && !c.constraint.Admits(n) {
		return false
	}
	if caps != nil {
		caps.add(c.name, n)
	}
	return true
}

// literalEquiv matches numeric literals of one kind by value, so every
// spelling of one number is equal: 100, 0x64, 0b1100100, 1_00.
type literalEquiv struct {
	kind string
	val  constant.Value
}

func (m *literalEquiv) match(n pycst.Node, _ *CaptureSet) bool {
	text, kind, ok := numericText(n)
	if !ok || kind != m.kind {
		return false
	}
	v, err := pycst.NumericValue(kind, text)
	return err == nil && pycst.NumericEqual(m.val, v)
}

func numericText(n pycst.Node) (text, kind string, ok bool) {
	switch lit := n.(type) {
	case *pycst.IntLit:
		return lit.Val.Text, "IntLit", true
	case *pycst.FloatLit:
		return lit.Val.Text, "FloatLit", true
	case *pycst.ImagLit:
		return lit.Val.Text, "ImagLit", true
	}
	return "", "", false
}

// stringEquiv matches plain string literals and implicit concatenations
// of them by evaluated value. Quote style, prefixes and concatenation
// splits are normalized away; bytes literals only equal bytes literals.
type stringEquiv struct {
	val pycst.StrValue
}

func (m *stringEquiv) match(n pycst.Node, _ *CaptureSet) bool {
	v, ok := plainStringValue(n)
	return ok && v == m.val
}

// plainStringValue evaluates a StrLit or an all-literal ConcatStr.
// Formatted parts and undecodable literals report false.
func plainStringValue(n pycst.Node) (pycst.StrValue, bool) {
	switch s := n.(type) {
	case *pycst.StrLit:
		v, err := pycst.StringValue(s.Val.Text)
		return v, err == nil
	case *pycst.ConcatStr:
		var out pycst.StrValue
		for i, part := range s.Parts {
			lit, ok := part.(*pycst.StrLit)
			if !ok {
				return pycst.StrValue{}, false
			}
			v, err := pycst.StringValue(lit.Val.Text)
			if err != nil {
				return pycst.StrValue{}, false
			}
			if i == 0 {
				out.Bytes = v.Bytes
			} else if out.Bytes != v.Bytes {
				return pycst.StrValue{}, false
			}
			out.Text += v.Text
		}
		return out, true
	}
	return pycst.StrValue{}, false
}

// interpolation matches formatted strings segment by segment: the
// decoded literal text around the fields must agree exactly and each
// interpolated field is matched structurally. Concatenations containing
// a formatted part are flattened first.
type interpolation struct {
	segments []string
	fields   []Matcher
}

func (m *interpolation) match(n pycst.Node, caps *CaptureSet) bool {
	segs, fields, err := interpolationParts(n)
	if err != nil || len(fields) != len(m.fields) {
		return false
	}
	for i := range segs {
		if segs[i] != m.segments[i] {
			return false
		}
	}
	for i, fm := range m.fields {
		if !fm.match(fields[i], caps) {
			return false
		}
	}
	return true
}

// interpolationParts flattens a formatted string, or a concatenation
// containing one, into decoded text segments and the interpolated
// fields between them. len(segments) == len(fields)+1.
func interpolationParts(n pycst.Node) ([]string, []*pycst.FStringExpr, error) {
	var parts []pycst.Expr
	switch s := n.(type) {
	case *pycst.FString:
		parts = []pycst.Expr{s}
	case *pycst.ConcatStr:
		parts = s.Parts
	default:
		return nil, nil, fmt.Errorf("not a formatted string")
	}

	segments := []string{""}
	var fields []*pycst.FStringExpr
	formatted := false
	for _, part := range parts {
		switch p := part.(type) {
		case *pycst.StrLit:
			v, err := pycst.StringValue(p.Val.Text)
			if err != nil {
				return nil, nil, err
			}
			if v.Bytes {
				return nil, nil, fmt.Errorf("bytes literal in formatted concatenation")
			}
			segments[len(segments)-1] += v.Text
		case *pycst.FString:
			formatted = true
			for _, sub := range p.Parts {
				switch sp := sub.(type) {
				case *pycst.FStringText:
					txt, err := pycst.DecodeFStringText(p.Open.Text, sp.Val.Text)
					if err != nil {
						return nil, nil, err
					}
					segments[len(segments)-1] += txt
				case *pycst.FStringExpr:
					fields = append(fields, sp)
					segments = append(segments, "")
				}
			}
		default:
			return nil, nil, fmt.Errorf("not a formatted string")
		}
	}
	if !formatted {
		return nil, nil, fmt.Errorf("not a formatted string")
	}
	return segments, fields, nil
}

type checkKind int

const (
	checkTok checkKind = iota
	checkOptTok
	checkTokList
	checkChild
	checkChildList
)

// fieldCheck is one compiled comparison of an exactShape matcher,
// addressing a node field by index.
type fieldCheck struct {
	index   int
	kind    checkKind
	text    string
	raw     bool // compare token text without whitespace normalization
	present bool
	child   Matcher // nil when the pattern slot is empty
	list    []Matcher
}

// exactShape matches nodes of one kind field by field. Syntax-only
// fields (parentheses, separators, brackets) are skipped, so grouping
// parens, trailing commas and whitespace never affect a match.
type exactShape struct {
	kind   string
	checks []fieldCheck
}

func (m *exactShape) match(n pycst.Node, caps *CaptureSet) bool {
	if pycst.KindOf(n) != m.kind {
		return false
	}
	for _, c := range m.checks {
		switch c.kind {
		case checkTok:
			got, _ := pycst.TokText(n, c.index)
			if normalizeTok(got) != c.text {
				return false
			}
		case checkOptTok:
			got, present := pycst.TokText(n, c.index)
			if present != c.present {
				return false
			}
			if present && !c.raw {
				got = normalizeTok(got)
			}
			if present && got != c.text {
				return false
			}
		case checkTokList:
			if strings.Join(pycst.TokTexts(n, c.index), "") != c.text {
				return false
			}
		case checkChild:
			got := pycst.ChildAt(n, c.index)
			if (got == nil) != (c.child == nil) {
				return false
			}
			if c.child != nil && !c.child.match(got, caps) {
				return false
			}
		case checkChildList:
			got := pycst.ChildrenAt(n, c.index)
			if len(got) != len(c.list) {
				return false
			}
			for i, cm := range c.list {
				if !cm.match(got[i], caps) {
					return false
				}
			}
		}
	}
	return true
}

// normalizeTok collapses internal whitespace so the two-word comparison
// operators compare equal across spacings ("not  in" equals "not in").
func normalizeTok(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CompileMatcher builds a matcher from a pattern tree. Names listed in
// placeholders become captures; a nil constraint value admits any node.
// Numeric and string literal patterns match by value, formatted strings
// by decoded segments, and every other node by kind and semantic
// fields.
func CompileMatcher(pattern pycst.Node, placeholders map[string]Constraint) (Matcher, error) {
	c := &matcherCompiler{placeholders: placeholders}
	return c.compile(pattern)
}

type matcherCompiler struct {
	placeholders map[string]Constraint
	used         map[string]bool
}

func (c *matcherCompiler) compile(n pycst.Node) (Matcher, error) {
	switch node := n.(type) {
	case *pycst.Name:
		if cons, ok := c.placeholders[node.Val.Text]; ok {
			if c.used == nil {
				c.used = map[string]bool{}
			}
			c.used[node.Val.Text] = true
			return &capture{name: node.Val.Text, constraint: cons}, nil
		}
	case *pycst.IntLit, *pycst.FloatLit, *pycst.ImagLit:
		text, kind, _ := numericText(n)
		v, err := pycst.NumericValue(kind, text)
		if err != nil {
			return nil, err
		}
		return &literalEquiv{kind: kind, val: v}, nil
	case *pycst.StrLit:
		v, err := pycst.StringValue(node.Val.Text)
		if err != nil {
			return nil, err
		}
		return &stringEquiv{val: v}, nil
	case *pycst.ConcatStr:
		if v, ok := plainStringValue(node); ok {
			return &stringEquiv{val: v}, nil
		}
		return c.interpolationMatcher(node)
	case *pycst.FString:
		return c.interpolationMatcher(node)
	}
	return c.shapeMatcher(n)
}

func (c *matcherCompiler) interpolationMatcher(n pycst.Node) (Matcher, error) {
	segs, fields, err := interpolationParts(n)
	if err != nil {
		return nil, err
	}
	m := &interpolation{segments: segs}
	for _, f := range fields {
		fm, err := c.shapeMatcher(f)
		if err != nil {
			return nil, err
		}
		m.fields = append(m.fields, fm)
	}
	return m, nil
}

func (c *matcherCompiler) shapeMatcher(n pycst.Node) (Matcher, error) {
	kind := pycst.KindOf(n)
	m := &exactShape{kind: kind}
	for i, f := range pycst.Fields(n) {
		switch f.Kind {
		case pycst.FieldTok:
			if !f.Sem {
				continue
			}
			text, _ := pycst.TokText(n, i)
			m.checks = append(m.checks, fieldCheck{index: i, kind: checkTok, text: normalizeTok(text)})
		case pycst.FieldOptTok:
			if !f.Sem {
				continue
			}
			// Format spec whitespace is significant, compare it verbatim.
			raw := kind == "FStringExpr" && f.Name == "Spec"
			fc := fieldCheck{index: i, kind: checkOptTok, raw: raw}
			if text, present := pycst.TokText(n, i); present {
				fc.present = true
				fc.text = text
				if !raw {
					fc.text = normalizeTok(text)
				}
			}
			m.checks = append(m.checks, fc)
		case pycst.FieldTokList:
			if !f.Sem {
				continue
			}
			m.checks = append(m.checks, fieldCheck{index: i, kind: checkTokList, text: strings.Join(pycst.TokTexts(n, i), "")})
		case pycst.FieldChild:
			fc := fieldCheck{index: i, kind: checkChild}
			if child := pycst.ChildAt(n, i); child != nil {
				cm, err := c.compile(child)
				if err != nil {
					return nil, err
				}
				fc.child = cm
			}
			m.checks = append(m.checks, fc)
		case pycst.FieldChildList:
			fc := fieldCheck{index: i, kind: checkChildList}
			for _, child := range pycst.ChildrenAt(n, i) {
				cm, err := c.compile(child)
				if err != nil {
					return nil, err
				}
				fc.list = append(fc.list, cm)
			}
			m.checks = append(m.checks, fc)
		}
	}
	return m, nil
}
