package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/refx/pycst"
)

func anyParams(names ...string) []Placeholder {
	ps := make([]Placeholder, len(names))
	for i, n := range names {
		ps[i] = Placeholder{Name: n}
	}
	return ps
}

func mustRule(t *testing.T, name, before, after string, placeholders []Placeholder) *Rule {
	t.Helper()
	r, err := CompileRule(name, before, after, placeholders)
	require.NoError(t, err, "compile rule %s", name)
	return r
}

func TestCompileRule_Validation(t *testing.T) {
	t.Run("missing before", func(t *testing.T) {
		_, err := CompileRule("square", "  ", "x * x", anyParams("x"))
		var missing *MissingTemplateError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "before", missing.Missing)
		assert.Equal(t, "square", missing.Rule)
	})

	t.Run("missing after", func(t *testing.T) {
		_, err := CompileRule("square", "x ** 2", "", anyParams("x"))
		var missing *MissingTemplateError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "after", missing.Missing)
	})

	t.Run("bare wildcard", func(t *testing.T) {
		_, err := CompileRule("anything", "x", "x", anyParams("x"))
		var forbidden *ForbiddenWildcardError
		require.ErrorAs(t, err, &forbidden)
		assert.Equal(t, "anything", forbidden.Rule)
	})

	t.Run("constrained top level capture is allowed", func(t *testing.T) {
		onlyName := ConstraintFunc(func(n pycst.Node) bool {
			_, ok := n.(*pycst.Name)
			return ok
		})
		_, err := CompileRule("named", "x", "f(x)", []Placeholder{{Name: "x", Constraint: onlyName}})
		assert.NoError(t, err)
	})

	t.Run("unused placeholder", func(t *testing.T) {
		_, err := CompileRule("square", "x ** 2", "x * x", anyParams("x", "y"))
		var unused *UnusedPlaceholderError
		require.ErrorAs(t, err, &unused)
		assert.Equal(t, "y", unused.Name)
		assert.Equal(t, "square", unused.Rule)
		assert.Equal(t, 1, unused.Position)
	})

	t.Run("category mismatch", func(t *testing.T) {
		_, err := CompileRule("mixed", "return x", "x", anyParams("x"))
		var tmpl *TemplateError
		require.ErrorAs(t, err, &tmpl)
		assert.Equal(t, "after", tmpl.Part)
	})

	t.Run("parse failure", func(t *testing.T) {
		_, err := CompileRule("broken", "x +", "x", anyParams("x"))
		var tmpl *TemplateError
		require.ErrorAs(t, err, &tmpl)
		assert.Equal(t, "before", tmpl.Part)
	})

	t.Run("multiple statements", func(t *testing.T) {
		_, err := CompileRule("multi", "x\ny", "x", anyParams("x"))
		var tmpl *TemplateError
		require.ErrorAs(t, err, &tmpl)
		assert.Contains(t, tmpl.Error(), "exactly one statement")
	})

	t.Run("duplicate placeholder", func(t *testing.T) {
		_, err := CompileRule("dup", "x + x", "x", anyParams("x", "x"))
		var tmpl *TemplateError
		require.ErrorAs(t, err, &tmpl)
		assert.Contains(t, tmpl.Error(), "declared twice")
	})
}

func TestCompileRule_DispatchKind(t *testing.T) {
	square := mustRule(t, "square", "x ** 2", "x * x", anyParams("x"))
	assert.Equal(t, "BinaryOp", square.Kind())

	boolish := mustRule(t, "if-true", "True if x else False", "bool(x)", anyParams("x"))
	assert.Equal(t, "IfExp", boolish.Kind())

	stmt := mustRule(t, "assert-msg", "assert x, 'boom'", "assert x", anyParams("x"))
	assert.Equal(t, "Assert", stmt.Kind())
}

func TestRule_Apply(t *testing.T) {
	powify := mustRule(t, "powify", "x * x", "x ** 2", anyParams("x"))

	t.Run("no match leaves node alone", func(t *testing.T) {
		node := mustExpr(t, "a * b")
		out, ok := powify.Apply(node)
		assert.False(t, ok)
		assert.Same(t, node, out)
	})

	t.Run("plain capture", func(t *testing.T) {
		out, ok := powify.Apply(mustExpr(t, "a * a"))
		require.True(t, ok)
		assert.Equal(t, "a ** 2", pycst.Print(out))
	})

	t.Run("capture keeps its parentheses", func(t *testing.T) {
		out, ok := powify.Apply(mustExpr(t, "(a + b) * (a + b)"))
		require.True(t, ok)
		assert.Equal(t, "(a + b) ** 2", pycst.Print(out))
	})

	t.Run("template slot adds needed parentheses", func(t *testing.T) {
		drop := mustRule(t, "drop-zero", "x + 0", "x * 2", anyParams("x"))
		out, ok := drop.Apply(mustExpr(t, "a + b + 0"))
		require.True(t, ok)
		assert.Equal(t, "(a + b) * 2", pycst.Print(out))
	})

	t.Run("tight capture needs no parentheses", func(t *testing.T) {
		drop := mustRule(t, "drop-zero", "x + 0", "x * 2", anyParams("x"))
		out, ok := drop.Apply(mustExpr(t, "a.b + 0"))
		require.True(t, ok)
		assert.Equal(t, "a.b * 2", pycst.Print(out))
	})

	t.Run("replacement wraps against replaced precedence", func(t *testing.T) {
		square := mustRule(t, "square", "x ** 2", "x * x", anyParams("x"))
		out, ok := square.Apply(mustExpr(t, "a ** 2"))
		require.True(t, ok)
		assert.Equal(t, "(a * a)", pycst.Print(out))
	})

	t.Run("argument slot keeps capture parentheses", func(t *testing.T) {
		wrap := mustRule(t, "print-it", "x + 0", "print(x)", anyParams("x"))
		out, ok := wrap.Apply(mustExpr(t, "(a if b else c) + 0"))
		require.True(t, ok)
		assert.Equal(t, "print((a if b else c))", pycst.Print(out))
	})

	t.Run("argument slot wraps bare capture", func(t *testing.T) {
		wrap := mustRule(t, "print-first", "x, 0", "print(x)", anyParams("x"))
		out, ok := wrap.Apply(mustExpr(t, "a if b else c, 0"))
		require.True(t, ok)
		assert.Equal(t, "(print((a if b else c)))", pycst.Print(out))
	})

	t.Run("replaced parentheses stick to the replacement", func(t *testing.T) {
		unwrap := mustRule(t, "drop-zero", "x + 0", "x", anyParams("x"))
		node := mustExpr(t, "(y + 0)")
		out, ok := unwrap.Apply(node)
		require.True(t, ok)
		assert.Equal(t, "(y)", pycst.Print(out))
	})

	t.Run("precedence against replaced node", func(t *testing.T) {
		loosen := mustRule(t, "or-ify", "x + 1", "x or x", anyParams("x"))
		out, ok := loosen.Apply(mustExpr(t, "a + 1"))
		require.True(t, ok)
		assert.Equal(t, "(a or a)", pycst.Print(out))
	})

	t.Run("statement rewrite", func(t *testing.T) {
		strip := mustRule(t, "assert-msg", "assert x, 'boom'", "assert x", anyParams("x"))
		node, err := pycst.ParseStmt("assert check(), 'boom'")
		require.NoError(t, err)
		out, ok := strip.Apply(node)
		require.True(t, ok)
		assert.Equal(t, "assert (check())", pycst.Print(out))
	})

	t.Run("lead survives substitution", func(t *testing.T) {
		node, err := pycst.ParseStmt("assert check(), 'boom'")
		require.NoError(t, err)
		node = pycst.WithLead(node, "  # kept\n")
		strip := mustRule(t, "assert-msg", "assert x, 'boom'", "assert x", anyParams("x"))
		out, ok := strip.Apply(node)
		require.True(t, ok)
		assert.Equal(t, "  # kept\nassert (check())", pycst.Print(out))
	})
}

func TestRule_Apply_LiteralSpellings(t *testing.T) {
	powify := mustRule(t, "powify", "x * x", "x ** 2", anyParams("x"))

	out, ok := powify.Apply(mustExpr(t, "0x10 * 16"))
	require.True(t, ok)
	assert.Equal(t, "0x10 ** 2", pycst.Print(out))

	_, ok = powify.Apply(mustExpr(t, "n * 2.0"))
	assert.False(t, ok)
}
