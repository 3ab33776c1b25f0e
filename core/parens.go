package core

import "github.com/termfx/refx/pycst"

// Expression precedence per the Python reference, higher binds tighter.
// Kinds not listed (names, literals, statements, clause nodes) take
// defaultPrecedence, as do generator expressions, which always carry
// their own parentheses except as a sole call argument.
const defaultPrecedence = 100

var binaryPrecedence = map[string]int{
	"|":  8,
	"^":  9,
	"&":  10,
	"<<": 11,
	">>": 11,
	"+":  12,
	"-":  12,
	"*":  13,
	"@":  13,
	"/":  13,
	"//": 13,
	"%":  13,
	"**": 15,
}

var unaryPrecedence = map[string]int{
	"not": 6,
	"~":   14,
	"-":   14,
	"+":   14,
}

var kindPrecedence = map[string]int{
	"NamedExpr": 1,
	"Lambda":    2,
	"IfExp":     3,
	"Compare":   7,
	"Await":     16,
	"Subscript": 17,
	"Call":      17,
	"Attribute": 17,
	"Tuple":     18,
	"List":      18,
	"ListComp":  18,
	"Dict":      18,
	"DictComp":  18,
	"Set":       18,
	"SetComp":   18,
}

func precedenceOf(n pycst.Node) int {
	switch node := n.(type) {
	case *pycst.BinaryOp:
		if p, ok := binaryPrecedence[node.Op.Text]; ok {
			return p
		}
	case *pycst.BoolOp:
		if node.Op.Text == "or" {
			return 4
		}
		return 5
	case *pycst.UnaryOp:
		if p, ok := unaryPrecedence[normalizeTok(node.Op.Text)]; ok {
			return p
		}
	default:
		if p, ok := kindPrecedence[pycst.KindOf(n)]; ok {
			return p
		}
	}
	return defaultPrecedence
}

func isParenthesized(n pycst.Node) bool {
	e, ok := n.(pycst.Expr)
	return ok && e.HasParens()
}

// NeedsParensInParent reports whether node, inserted under parent,
// needs parentheses to keep its meaning. Used when the destination slot
// is known exactly.
func NeedsParensInParent(node, parent pycst.Node) bool {
	e, ok := node.(pycst.Expr)
	if !ok || e.HasParens() {
		return false
	}
	switch node.(type) {
	case *pycst.GenExp:
		// The sole argument of a call is the one position where a
		// generator expression may share the call's parentheses.
		if call, isCall := parent.(*pycst.Call); isCall && len(call.Args) <= 1 {
			return false
		}
		return true
	case *pycst.Tuple:
		_, parentExpr := parent.(pycst.Expr)
		return parentExpr
	}
	return precedenceOf(node) < precedenceOf(parent)
}

// NeedsParensVersus reports whether node, replacing previous, needs
// parentheses. The real parent is unknown here, so parentheses the
// replaced node carried are kept and tuples and generator expressions
// are always wrapped.
func NeedsParensVersus(node, previous pycst.Node) bool {
	e, ok := node.(pycst.Expr)
	if !ok || e.HasParens() {
		return false
	}
	if isParenthesized(previous) {
		return true
	}
	switch node.(type) {
	case *pycst.GenExp, *pycst.Tuple:
		return true
	}
	return precedenceOf(node) < precedenceOf(previous)
}
