package rules

import (
	"go/constant"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/pycst"
)

// builtinNames are the names bound in Python's builtins module that a
// Builtin-constrained placeholder admits.
var builtinNames = map[string]bool{
	"abs": true, "all": true, "any": true, "ascii": true, "bin": true,
	"bool": true, "breakpoint": true, "bytearray": true, "bytes": true,
	"callable": true, "chr": true, "classmethod": true, "compile": true,
	"complex": true, "copyright": true, "credits": true, "delattr": true,
	"dict": true, "dir": true, "divmod": true, "enumerate": true,
	"eval": true, "exec": true, "exit": true, "filter": true,
	"float": true, "format": true, "frozenset": true, "getattr": true,
	"globals": true, "hasattr": true, "hash": true, "help": true,
	"hex": true, "id": true, "input": true, "int": true,
	"isinstance": true, "issubclass": true, "iter": true, "len": true,
	"license": true, "list": true, "locals": true, "map": true,
	"max": true, "memoryview": true, "min": true, "next": true,
	"object": true, "oct": true, "open": true, "ord": true,
	"pow": true, "print": true, "property": true, "quit": true,
	"range": true, "repr": true, "reversed": true, "round": true,
	"set": true, "setattr": true, "slice": true, "sorted": true,
	"staticmethod": true, "str": true, "sum": true, "super": true,
	"tuple": true, "type": true, "vars": true, "zip": true,
}

// constraintTable maps the constraint names usable in rule files to
// their constructors.
var constraintTable = map[string]func() core.Constraint{
	"any":      Any,
	"integer":  Integer,
	"float":    Float,
	"string":   String,
	"boolean":  Boolean,
	"none":     NoneValue,
	"builtin":  Builtin,
	"constant": Constant,
	"truthy":   Truthy,
	"falsey":   Falsey,
}

// Any admits every node. It is the default for parameters declared
// without a constraint and keeps the top-level wildcard check intact,
// so a rule whose whole pattern is one Any placeholder is still
// rejected.
func Any() core.Constraint { return nil }

// Integer admits integer literals in any spelling.
func Integer() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		_, ok := n.(*pycst.IntLit)
		return ok
	})
}

// Float admits float literals.
func Float() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		_, ok := n.(*pycst.FloatLit)
		return ok
	})
}

// String admits single plain string literals, bytes included.
// Concatenations and formatted strings are not admitted.
func String() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		_, ok := n.(*pycst.StrLit)
		return ok
	})
}

// Boolean admits the names True and False.
func Boolean() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		name, ok := n.(*pycst.Name)
		return ok && (name.Val.Text == "True" || name.Val.Text == "False")
	})
}

// NoneValue admits the name None.
func NoneValue() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		name, ok := n.(*pycst.Name)
		return ok && name.Val.Text == "None"
	})
}

// Builtin admits names bound in Python's builtins module.
func Builtin() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		name, ok := n.(*pycst.Name)
		return ok && builtinNames[name.Val.Text]
	})
}

// Constant admits literal values: numbers, plain strings and their
// concatenations, True, False and None.
func Constant() core.Constraint {
	return core.ConstraintFunc(isConstant)
}

func isConstant(n pycst.Node) bool {
	switch lit := n.(type) {
	case *pycst.IntLit, *pycst.FloatLit, *pycst.ImagLit, *pycst.StrLit:
		return true
	case *pycst.Name:
		switch lit.Val.Text {
		case "True", "False", "None":
			return true
		}
	case *pycst.ConcatStr:
		for _, part := range lit.Parts {
			if _, ok := part.(*pycst.StrLit); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// Truthy admits literals whose truth value is true: True, nonzero
// numbers, nonempty strings.
func Truthy() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		truthy, ok := literalTruth(n)
		return ok && truthy
	})
}

// Falsey admits literals whose truth value is false: False, None,
// zero of any numeric kind, empty strings.
func Falsey() core.Constraint {
	return core.ConstraintFunc(func(n pycst.Node) bool {
		truthy, ok := literalTruth(n)
		return ok && !truthy
	})
}

// literalTruth evaluates the truth value of a literal node. Anything
// that is not a literal with a statically known truth value reports
// ok false.
func literalTruth(n pycst.Node) (truthy, ok bool) {
	switch lit := n.(type) {
	case *pycst.Name:
		switch lit.Val.Text {
		case "True":
			return true, true
		case "False", "None":
			return false, true
		}
	case *pycst.IntLit:
		return nonzero("IntLit", lit.Val.Text)
	case *pycst.FloatLit:
		return nonzero("FloatLit", lit.Val.Text)
	case *pycst.ImagLit:
		return nonzero("ImagLit", lit.Val.Text)
	case *pycst.StrLit:
		v, err := pycst.StringValue(lit.Val.Text)
		if err != nil {
			return false, false
		}
		return v.Text != "", true
	}
	return false, false
}

func nonzero(kind, text string) (truthy, ok bool) {
	v, err := pycst.NumericValue(kind, text)
	if err != nil {
		return false, false
	}
	return constant.Sign(v) != 0, true
}
