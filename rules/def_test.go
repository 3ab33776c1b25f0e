package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/pycst"
)

func rewriteWith(t *testing.T, rules []*core.Rule, src string) core.Result {
	t.Helper()
	mod, err := pycst.Parse(src)
	require.NoError(t, err, "parse %q", src)
	return core.NewEngine(rules).Rewrite(mod)
}

func TestCompile(t *testing.T) {
	rule, err := Compile(Def{
		Name:   "drop-zero",
		Params: []Param{{Name: "x"}},
		Before: "x + 0",
		After:  "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "drop-zero", rule.Name)
	assert.Equal(t, "BinaryOp", rule.Kind())
}

func TestCompile_ConstraintThreading(t *testing.T) {
	rule, err := Compile(Def{
		Name:   "mul-zero",
		Params: []Param{{Name: "x", Constraint: Integer()}},
		Before: "x * 0",
		After:  "0",
	})
	require.NoError(t, err)

	res := rewriteWith(t, []*core.Rule{rule}, "a = 5 * 0\n")
	assert.True(t, res.Modified)
	assert.Equal(t, "a = 0\n", pycst.Print(res.Tree))

	// The constraint blocks non-literal captures.
	res = rewriteWith(t, []*core.Rule{rule}, "a = f() * 0\n")
	assert.False(t, res.Modified)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(Def{Name: "broken", Before: "x +", After: "x"})
	var te *core.TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "broken", te.Rule)

	_, err = Compile(Def{
		Name:   "unused",
		Params: []Param{{Name: "q"}},
		Before: "x",
		After:  "x",
	})
	var ue *core.UnusedPlaceholderError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "q", ue.Name)

	_, err = Compile(Def{Name: "half", Before: "x + 0"})
	var me *core.MissingTemplateError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "after", me.Missing)
}

func TestCompileAll(t *testing.T) {
	defs := []Def{
		{Name: "a", Params: []Param{{Name: "x"}}, Before: "x + 0", After: "x"},
		{Name: "b", Params: []Param{{Name: "x"}}, Before: "x * 1", After: "x"},
		{Name: "c", Params: []Param{{Name: "x"}}, Before: "x - 0", After: "x"},
	}

	rules, err := CompileAll(defs, []string{"b", "not-present"})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].Name)
	assert.Equal(t, "c", rules[1].Name)

	_, err = CompileAll([]Def{{Name: "broken", After: "x"}}, nil)
	var me *core.MissingTemplateError
	assert.ErrorAs(t, err, &me)
}

func TestConstantSwapConvergence(t *testing.T) {
	defs := []Def{
		{Name: "double", Params: []Param{{Name: "x"}}, Before: "x + x", After: "x * 2"},
		{
			Name:   "const-left",
			Params: []Param{{Name: "x"}, {Name: "c", Constraint: Constant()}},
			Before: "x * c",
			After:  "c * x",
		},
	}
	rules, err := CompileAll(defs, nil)
	require.NoError(t, err)

	// Pass one doubles, pass two moves the constant left, pass three
	// finds nothing more to do.
	res := rewriteWith(t, rules, "a + a\n")
	assert.Equal(t, "2 * a\n", pycst.Print(res.Tree))
	assert.Equal(t, 3, res.Passes)

	again := rewriteWith(t, rules, pycst.Print(res.Tree))
	assert.False(t, again.Modified)
}
