package rules

// Builtins returns the builtin rule catalog in its canonical order.
// Callers drop individual rules by passing their names to CompileAll.
func Builtins() []Def {
	return []Def{
		{
			Name:   "square",
			Params: []Param{{Name: "x"}},
			Before: "x * x",
			After:  "x ** 2",
		},
		{
			Name:   "if-true",
			Params: []Param{{Name: "x"}, {Name: "y"}},
			Before: "x if True else y",
			After:  "x",
		},
		{
			Name:   "if-false",
			Params: []Param{{Name: "x"}, {Name: "y"}},
			Before: "x if False else y",
			After:  "y",
		},
		{
			Name:   "double-not",
			Params: []Param{{Name: "x"}},
			Before: "not not x",
			After:  "bool(x)",
		},
		{
			Name:   "add-self",
			Params: []Param{{Name: "x"}},
			Before: "x + x",
			After:  "2 * x",
		},
		{
			Name:   "mul-zero",
			Params: []Param{{Name: "x", Constraint: Integer()}},
			Before: "x * 0",
			After:  "0",
		},
	}
}
