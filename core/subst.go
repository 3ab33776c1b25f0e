package core

import "github.com/termfx/refx/pycst"

// instantiate walks the template and replaces each placeholder name
// with its bound node. The substituted node takes over the placeholder
// token's leading trivia and is parenthesized as its template slot
// requires. The template itself is never mutated.
func instantiate(template pycst.Node, b Bindings) pycst.Node {
	if nm, ok := template.(*pycst.Name); ok {
		if repl, bound := b[nm.Val.Text]; bound {
			return placeBinding(repl, nm, nil)
		}
	}
	return substWalk(template, b)
}

func substWalk(n pycst.Node, b Bindings) pycst.Node {
	out, _ := pycst.MapChildren(n, func(child pycst.Node) pycst.Node {
		if nm, ok := child.(*pycst.Name); ok {
			if repl, bound := b[nm.Val.Text]; bound {
				return placeBinding(repl, nm, n)
			}
		}
		return substWalk(child, b)
	})
	return out
}

// placeBinding drops a captured node into a placeholder's slot. The
// capture keeps any parentheses it carried in the source; extra ones
// are added when the surrounding template slot binds tighter.
func placeBinding(repl pycst.Node, ph *pycst.Name, parent pycst.Node) pycst.Node {
	out := pycst.WithLead(repl, ph.Val.Lead)
	e, ok := out.(pycst.Expr)
	if !ok {
		return out
	}
	if parent == nil {
		// A template that is a bare placeholder has no surrounding
		// slot; the insertion point decides the parentheses later.
		return out
	}
	if NeedsParensInParent(e, parent) {
		return pycst.WrapParens(e)
	}
	return out
}
