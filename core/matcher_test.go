package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/refx/pycst"
)

func mustExpr(t *testing.T, src string) pycst.Expr {
	t.Helper()
	e, err := pycst.ParseExpr(src)
	require.NoError(t, err, "parse %q", src)
	return e
}

func mustMatcher(t *testing.T, pattern string, placeholders map[string]Constraint) Matcher {
	t.Helper()
	m, err := CompileMatcher(mustExpr(t, pattern), placeholders)
	require.NoError(t, err, "compile %q", pattern)
	return m
}

func anyPlaceholders(names ...string) map[string]Constraint {
	table := make(map[string]Constraint, len(names))
	for _, n := range names {
		table[n] = nil
	}
	return table
}

func TestCompileMatcher_NumericEquivalence(t *testing.T) {
	tests := []struct {
		pattern string
		source  string
		want    bool
	}{
		{"100", "100", true},
		{"100", "0x64", true},
		{"100", "0o144", true},
		{"100", "0b1100100", true},
		{"100", "1_00", true},
		{"100", "99", false},
		{"100", "100.0", false},
		{"100.0", "100", false},
		{"1.0", "10e-1", true},
		{"1.0", "1.", true},
		{"0.5", ".5", true},
		{"1j", "1J", true},
		{"1j", "1.0j", true},
		{"1j", "1", false},
		{"2", "foo", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.source, func(t *testing.T) {
			m := mustMatcher(t, tt.pattern, nil)
			assert.Equal(t, tt.want, Matches(m, mustExpr(t, tt.source)))
		})
	}
}

func TestCompileMatcher_StringEquivalence(t *testing.T) {
	tests := []struct {
		pattern string
		source  string
		want    bool
	}{
		{`'ab'`, `"ab"`, true},
		{`'ab'`, `'''ab'''`, true},
		{`'ab'`, `'a' 'b'`, true},
		{`'a' 'b'`, `'ab'`, true},
		{`'ab'`, `u'ab'`, true},
		{`r'\n'`, `'\\n'`, true},
		{`r'\n'`, `'\n'`, false},
		{`'A'`, `'\x41'`, true},
		{`b'x'`, `'x'`, false},
		{`b'x'`, `b'x'`, true},
		{`'x'`, `'y'`, false},
		{`'ab'`, `f'ab'`, false},
		{`'ab'`, `2`, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.source, func(t *testing.T) {
			m := mustMatcher(t, tt.pattern, nil)
			assert.Equal(t, tt.want, Matches(m, mustExpr(t, tt.source)))
		})
	}
}

func TestCompileMatcher_ShapeInsensitivity(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		source  string
		want    bool
	}{
		{"spacing", "x + 1", "x  +  1", true},
		{"grouping parens", "x + 1", "(x) + (1)", true},
		{"nested grouping", "x + 1", "((x + 1))", true},
		{"trailing comma", "f(a)", "f(a,)", true},
		{"two word op spacing", "a not in b", "a not  in b", true},
		{"is not", "a is not b", "a is  not b", true},
		{"different op", "x + 1", "x - 1", false},
		{"star arg differs", "f(a)", "f(*a)", false},
		{"keyword arg differs", "f(1)", "f(x=1)", false},
		{"arity differs", "[1, 2]", "[1, 2, 3]", false},
		{"attribute name differs", "a.b", "a.c", false},
		{"chain length differs", "a < b", "a < b < c", false},
		{"kind differs", "x + 1", "x", false},
		{"call vs subscript", "f(a)", "f[a]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMatcher(t, tt.pattern, nil)
			assert.Equal(t, tt.want, Matches(m, mustExpr(t, tt.source)))
		})
	}
}

func TestCompileMatcher_Placeholders(t *testing.T) {
	m := mustMatcher(t, "x + 1", anyPlaceholders("x"))

	b, ok := Extract(m, mustExpr(t, "foo(bar) + 1"))
	require.True(t, ok)
	assert.Equal(t, "foo(bar)", pycst.Print(b["x"]))

	_, ok = Extract(m, mustExpr(t, "foo(bar) + 2"))
	assert.False(t, ok)
}

func TestCompileMatcher_RepeatedPlaceholderUnifies(t *testing.T) {
	m := mustMatcher(t, "x + x", anyPlaceholders("x"))

	tests := []struct {
		source string
		want   bool
	}{
		{"a + a", true},
		{"a + b", false},
		{"foo(bar) + foo(bar)", true},
		{"foo(bar) + foo(baz)", false},
		{"(a) + a", true},
		{"a + a.b", false},
		{"0x10 + 16", true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			b, ok := Extract(m, mustExpr(t, tt.source))
			assert.Equal(t, tt.want, ok)
			if tt.want {
				require.Contains(t, b, "x")
			}
		})
	}
}

func TestCompileMatcher_PlaceholderConstraint(t *testing.T) {
	onlyNames := ConstraintFunc(func(n pycst.Node) bool {
		_, ok := n.(*pycst.Name)
		return ok
	})
	m := mustMatcher(t, "x + 1", map[string]Constraint{"x": onlyNames})

	assert.True(t, Matches(m, mustExpr(t, "a + 1")))
	assert.False(t, Matches(m, mustExpr(t, "a.b + 1")))
	assert.False(t, Matches(m, mustExpr(t, "f() + 1")))
}

func TestCompileMatcher_Interpolation(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		source  string
		want    bool
	}{
		{"same text", `f'{x}!'`, `f'{ value }!'`, true},
		{"segment differs", `f'{x}!'`, `f'{value}?'`, false},
		{"concat flattens", `f'a{x}'`, `'a' f'{value}'`, true},
		{"pattern concat flattens", `'a' f'{x}'`, `f'a{value}'`, true},
		{"escape decodes", "f'\\n{x}'", `f'''` + "\n" + `{value}'''`, true},
		{"doubled brace decodes", `f'{{{x}'`, "f'\\x7b{value}'", true},
		{"conversion differs", `f'{x!r}'`, `f'{value}'`, false},
		{"conversion equal", `f'{x!r}'`, `f'{value!r}'`, true},
		{"format spec equal", `f'{x:>8}'`, `f'{value:>8}'`, true},
		{"format spec whitespace significant", `f'{x: >8}'`, `f'{value:>8}'`, false},
		{"field count differs", `f'{x}'`, `f'{a}{b}'`, false},
		{"plain string is not formatted", `f'ab'`, `'ab'`, false},
		{"structured field", `f'{a + b}'`, `f'{x+y}'`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustMatcher(t, tt.pattern, anyPlaceholders("x"))
			assert.Equal(t, tt.want, Matches(m, mustExpr(t, tt.source)))
		})
	}
}

func TestCompileMatcher_InterpolationCapture(t *testing.T) {
	m := mustMatcher(t, `f'{x}={x}'`, anyPlaceholders("x"))

	b, ok := Extract(m, mustExpr(t, `f'{a.b}={a.b}'`))
	require.True(t, ok)
	assert.Equal(t, "a.b", pycst.Print(b["x"]))

	_, ok = Extract(m, mustExpr(t, `f'{a}={b}'`))
	assert.False(t, ok)
}

func TestCompileMatcher_StatementPattern(t *testing.T) {
	stmt, err := pycst.ParseStmt("assert x, 'boom'")
	require.NoError(t, err)
	m, err := CompileMatcher(stmt, anyPlaceholders("x"))
	require.NoError(t, err)

	target, err := pycst.ParseStmt(`assert check(),  "boom"`)
	require.NoError(t, err)
	b, ok := Extract(m, target)
	require.True(t, ok)
	assert.Equal(t, "check()", pycst.Print(b["x"]))

	other, err := pycst.ParseStmt("assert check(), 'bust'")
	require.NoError(t, err)
	assert.False(t, Matches(m, other))
}

func TestMatches_AnythingAndCaptureLeaveNoState(t *testing.T) {
	assert.True(t, Matches(Anything(), mustExpr(t, "x")))

	m := mustMatcher(t, "x", anyPlaceholders("x"))
	// Matches without an Extract must not panic on a nil capture set.
	assert.True(t, Matches(m, mustExpr(t, "a + b")))
}
