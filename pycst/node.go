// Package pycst models Python source as a formatting-preserving concrete
// syntax tree. Nodes are immutable value types: rewrites build new nodes
// and shallow-copy parents, they never mutate in place. Every token keeps
// the trivia that preceded it, so printing an unmodified tree returns the
// original source exactly.
//
// Struct field declaration order is syntax order. The generic printer,
// the structural matcher and the child walker all rely on that: they
// reflect over fields in order and decide what a field is by its type
// (Tok and Parens fields are syntax, Node-typed fields are children).
// Tok fields tagged `cst:"sem"` carry meaning beyond punctuation (names,
// operators, literal spellings) and participate in structural matching.
package pycst

// Node is implemented by every syntax tree node.
type Node interface {
	node()
}

// Expr is implemented by every expression node. Expressions can carry
// explicit parentheses.
type Expr interface {
	Node
	expr()
	HasParens() bool
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// ---------------------------------------------------------------------------
// Expressions

// Name is an identifier reference.
type Name struct {
	Parens
	Val Tok `cst:"sem"`
}

// IntLit is an integer literal in any spelling (decimal, hex, octal,
// binary, with or without underscore groupings).
type IntLit struct {
	Parens
	Val Tok `cst:"sem"`
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Parens
	Val Tok `cst:"sem"`
}

// ImagLit is an imaginary literal (trailing j or J).
type ImagLit struct {
	Parens
	Val Tok `cst:"sem"`
}

// StrLit is a single string literal including its prefix and quotes.
type StrLit struct {
	Parens
	Val Tok `cst:"sem"`
}

// ConcatStr is a sequence of adjacent string literals (implicit
// concatenation). Parts are StrLit or FString nodes.
type ConcatStr struct {
	Parens
	Parts []Expr
}

// FString is a formatted string literal. Parts alternate between
// FStringText and FStringExpr in source order.
type FString struct {
	Parens
	Open  Tok
	Parts []Node
	Close Tok
}

// FStringText is a literal text run inside an f-string.
type FStringText struct {
	Val Tok `cst:"sem"`
}

// FStringExpr is one interpolated {...} field inside an f-string.
type FStringExpr struct {
	LBrace Tok
	Value  Expr
	Eq     *Tok `cst:"sem"`
	Conv   *Tok `cst:"sem"`
	Spec   *Tok `cst:"sem"`
	RBrace Tok
}

// Element is one item of a tuple, list or set display, or of any other
// comma-separated sequence that has no richer per-item syntax.
type Element struct {
	Value Expr
	Comma *Tok
}

// Tuple is a tuple display. Bare tuples have no parens of their own;
// parenthesized tuples keep the pair in Parens.
type Tuple struct {
	Parens
	Elts []*Element
}

// List is a list display.
type List struct {
	Parens
	LBrack Tok
	Elts   []*Element
	RBrack Tok
}

// Set is a set display.
type Set struct {
	Parens
	LBrace Tok
	Elts   []*Element
	RBrace Tok
}

// DictItem is one key: value entry, or a **expansion when Star is set.
type DictItem struct {
	Star  *Tok `cst:"sem"`
	Key   Expr
	Colon *Tok
	Value Expr
	Comma *Tok
}

// Dict is a dict display.
type Dict struct {
	Parens
	LBrace Tok
	Items  []*DictItem
	RBrace Tok
}

// CompFor is one "for target in iter" clause of a comprehension.
type CompFor struct {
	Async  *Tok `cst:"sem"`
	ForKw  Tok
	Target Expr
	InKw   Tok
	Iter   Expr
}

// CompIf is one "if cond" clause of a comprehension.
type CompIf struct {
	IfKw Tok
	Cond Expr
}

// ListComp is a list comprehension. Clauses holds *CompFor and *CompIf
// nodes in source order, starting with a CompFor.
type ListComp struct {
	Parens
	LBrack  Tok
	Elt     Expr
	Clauses []Node
	RBrack  Tok
}

// SetComp is a set comprehension.
type SetComp struct {
	Parens
	LBrace  Tok
	Elt     Expr
	Clauses []Node
	RBrace  Tok
}

// DictComp is a dict comprehension.
type DictComp struct {
	Parens
	LBrace  Tok
	Key     Expr
	Colon   Tok
	Value   Expr
	Clauses []Node
	RBrace  Tok
}

// GenExp is a generator expression. It owns no brackets; any enclosing
// parens live in Parens.
type GenExp struct {
	Parens
	Elt     Expr
	Clauses []Node
}

// BinaryOp is a binary arithmetic or bitwise operation.
type BinaryOp struct {
	Parens
	Left  Expr
	Op    Tok `cst:"sem"`
	Right Expr
}

// BoolOp is an "and" or "or" operation.
type BoolOp struct {
	Parens
	Left  Expr
	Op    Tok `cst:"sem"`
	Right Expr
}

// UnaryOp is a unary operation: not, -, + or ~.
type UnaryOp struct {
	Parens
	Op      Tok `cst:"sem"`
	Operand Expr
}

// CompareTerm is one operator/operand pair of a comparison chain. Two
// word operators keep their exact source span in Op ("not  in" compares
// equal to "not in").
type CompareTerm struct {
	Op    Tok `cst:"sem"`
	Right Expr
}

// Compare is a comparison chain: left op right [op right ...].
type Compare struct {
	Parens
	Left  Expr
	Terms []*CompareTerm
}

// Attribute is an attribute access: value.attr.
type Attribute struct {
	Parens
	Value Expr
	Dot   Tok
	Attr  *Name
}

// Slice is a [lower:upper:step] slice; any of the three parts may be nil.
type Slice struct {
	Parens
	Lower  Expr
	Colon1 Tok
	Upper  Expr
	Colon2 *Tok
	Step   Expr
}

// Subscript is an indexing expression: value[index]. Index may be any
// expression including a Slice or a Tuple of slices.
type Subscript struct {
	Parens
	Value  Expr
	LBrack Tok
	Index  Expr
	RBrack Tok
}

// Arg is one call argument: positional, keyword (Kw non-nil), *args or
// **kwargs (Star set).
type Arg struct {
	Star  *Tok `cst:"sem"`
	Kw    *Name
	Eq    *Tok
	Value Expr
	Comma *Tok
}

// Call is a function call.
type Call struct {
	Parens
	Func Expr
	LPar Tok
	Args []*Arg
	RPar Tok
}

// Param is one parameter of a lambda or function definition.
type Param struct {
	Star    *Tok `cst:"sem"`
	Name    *Name
	Colon   *Tok
	Ann     Expr
	Eq      *Tok
	Default Expr
	Comma   *Tok
}

// Lambda is a lambda expression.
type Lambda struct {
	Parens
	Kw     Tok
	Params []*Param
	Colon  Tok
	Body   Expr
}

// IfExp is a conditional expression: body if cond else orelse.
type IfExp struct {
	Parens
	Body   Expr
	IfKw   Tok
	Cond   Expr
	ElseKw Tok
	Orelse Expr
}

// NamedExpr is an assignment expression: target := value.
type NamedExpr struct {
	Parens
	Target Expr
	Op     Tok
	Value  Expr
}

// Await is an await expression.
type Await struct {
	Parens
	Kw    Tok
	Value Expr
}

// Starred is a *value item in assignment targets and displays.
type Starred struct {
	Parens
	Star  Tok
	Value Expr
}

// Ellipsis is the ... literal.
type Ellipsis struct {
	Parens
	Val Tok
}

// ---------------------------------------------------------------------------
// Statements

// Module is a whole source file. EOF carries any trivia after the last
// statement.
type Module struct {
	Body []Stmt
	EOF  Tok
}

// Suite is a statement block: either the inline body of a compound
// statement header or an indented block. Indentation lives in the lead
// trivia of each statement's first token.
type Suite struct {
	Stmts []Stmt
}

// ExprStmt is a bare expression used as a statement.
type ExprStmt struct {
	Value Expr
	Semi  *Tok
}

// AssignTarget is one "target =" prefix of a (possibly chained)
// assignment.
type AssignTarget struct {
	Target Expr
	Eq     Tok
}

// Assign is an assignment statement: t1 = t2 = value.
type Assign struct {
	Targets []*AssignTarget
	Value   Expr
	Semi    *Tok
}

// AugAssign is an augmented assignment: target op= value.
type AugAssign struct {
	Target Expr
	Op     Tok `cst:"sem"`
	Value  Expr
	Semi   *Tok
}

// AnnAssign is an annotated assignment: target: ann [= value].
type AnnAssign struct {
	Target Expr
	Colon  Tok
	Ann    Expr
	Eq     *Tok
	Value  Expr
	Semi   *Tok
}

// Return is a return statement; Value may be nil.
type Return struct {
	Kw    Tok
	Value Expr
	Semi  *Tok
}

// Pass is a pass statement.
type Pass struct {
	Kw   Tok
	Semi *Tok
}

// Break is a break statement.
type Break struct {
	Kw   Tok
	Semi *Tok
}

// Continue is a continue statement.
type Continue struct {
	Kw   Tok
	Semi *Tok
}

// Delete is a del statement.
type Delete struct {
	Kw      Tok
	Targets []*Element
	Semi    *Tok
}

// Assert is an assert statement; Msg may be nil.
type Assert struct {
	Kw    Tok
	Cond  Expr
	Comma *Tok
	Msg   Expr
	Semi  *Tok
}

// Raise is a raise statement; Exc and Cause may be nil.
type Raise struct {
	Kw     Tok
	Exc    Expr
	FromKw *Tok
	Cause  Expr
	Semi   *Tok
}

// Global is a global declaration.
type Global struct {
	Kw    Tok
	Names []*Element
	Semi  *Tok
}

// Nonlocal is a nonlocal declaration.
type Nonlocal struct {
	Kw    Tok
	Names []*Element
	Semi  *Tok
}

// ImportAlias is one "name [as alias]" item of an import statement.
// Name is a Name or dotted Attribute chain.
type ImportAlias struct {
	Name  Expr
	AsKw  *Tok
	Alias *Name
	Comma *Tok
}

// Import is an import statement.
type Import struct {
	Kw    Tok
	Names []*ImportAlias
	Semi  *Tok
}

// ImportFrom is a from ... import statement. Dots holds the relative
// level tokens; Module may be nil for purely relative imports; Star is
// set for "import *".
type ImportFrom struct {
	FromKw Tok
	Dots   []Tok `cst:"sem"`
	Module Expr
	Kw     Tok
	Star   *Tok `cst:"sem"`
	LPar   *Tok
	Names  []*ImportAlias
	RPar   *Tok
	Semi   *Tok
}

// If is an if or elif branch; Kw distinguishes the two. Orelse is a
// further *If (elif), an *Else, or nil.
type If struct {
	Kw     Tok `cst:"sem"`
	Cond   Expr
	Colon  Tok
	Body   *Suite
	Orelse Stmt
}

// Else is the else branch of an if, while, for or try statement.
type Else struct {
	Kw    Tok
	Colon Tok
	Body  *Suite
}

// While is a while loop; Orelse may be nil.
type While struct {
	Kw     Tok
	Cond   Expr
	Colon  Tok
	Body   *Suite
	Orelse Stmt
}

// For is a for loop; Orelse may be nil.
type For struct {
	Async  *Tok `cst:"sem"`
	Kw     Tok
	Target Expr
	InKw   Tok
	Iter   Expr
	Colon  Tok
	Body   *Suite
	Orelse Stmt
}

// WithItem is one "ctx [as var]" item of a with statement.
type WithItem struct {
	Ctx   Expr
	AsKw  *Tok
	Var   Expr
	Comma *Tok
}

// With is a with statement.
type With struct {
	Async *Tok `cst:"sem"`
	Kw    Tok
	Items []*WithItem
	Colon Tok
	Body  *Suite
}

// Except is one except clause; Type, AsKw and Name may be nil for a bare
// except.
type Except struct {
	Kw    Tok
	Type  Expr
	AsKw  *Tok
	Name  *Name
	Colon Tok
	Body  *Suite
}

// Finally is the finally clause of a try statement.
type Finally struct {
	Kw    Tok
	Colon Tok
	Body  *Suite
}

// Try is a try statement.
type Try struct {
	Kw       Tok
	Colon    Tok
	Body     *Suite
	Handlers []*Except
	Orelse   Stmt
	Final    *Finally
}

// Decorator is one @expression line before a function or class
// definition.
type Decorator struct {
	At    Tok
	Value Expr
}

// FuncDef is a function definition.
type FuncDef struct {
	Decorators []*Decorator
	Async      *Tok `cst:"sem"`
	Kw         Tok
	Name       *Name
	LPar       Tok
	Params     []*Param
	RPar       Tok
	Arrow      *Tok
	Returns    Expr
	Colon      Tok
	Body       *Suite
}

// ClassDef is a class definition; the base list parens are optional.
type ClassDef struct {
	Decorators []*Decorator
	Kw         Tok
	Name       *Name
	LPar       *Tok
	Args       []*Arg
	RPar       *Tok
	Colon      Tok
	Body       *Suite
}

// ---------------------------------------------------------------------------
// Marker methods

func (*Name) node()        {}
func (*Name) expr()        {}
func (*IntLit) node()      {}
func (*IntLit) expr()      {}
func (*FloatLit) node()    {}
func (*FloatLit) expr()    {}
func (*ImagLit) node()     {}
func (*ImagLit) expr()     {}
func (*StrLit) node()      {}
func (*StrLit) expr()      {}
func (*ConcatStr) node()   {}
func (*ConcatStr) expr()   {}
func (*FString) node()     {}
func (*FString) expr()     {}
func (*FStringText) node() {}
func (*FStringExpr) node() {}
func (*Element) node()     {}
func (*Tuple) node()       {}
func (*Tuple) expr()       {}
func (*List) node()        {}
func (*List) expr()        {}
func (*Set) node()         {}
func (*Set) expr()         {}
func (*DictItem) node()    {}
func (*Dict) node()        {}
func (*Dict) expr()        {}
func (*CompFor) node()     {}
func (*CompIf) node()      {}
func (*ListComp) node()    {}
func (*ListComp) expr()    {}
func (*SetComp) node()     {}
func (*SetComp) expr()     {}
func (*DictComp) node()    {}
func (*DictComp) expr()    {}
func (*GenExp) node()      {}
func (*GenExp) expr()      {}
func (*BinaryOp) node()    {}
func (*BinaryOp) expr()    {}
func (*BoolOp) node()      {}
func (*BoolOp) expr()      {}
func (*UnaryOp) node()     {}
func (*UnaryOp) expr()     {}
func (*CompareTerm) node() {}
func (*Compare) node()     {}
func (*Compare) expr()     {}
func (*Attribute) node()   {}
func (*Attribute) expr()   {}
func (*Slice) node()       {}
func (*Slice) expr()       {}
func (*Subscript) node()   {}
func (*Subscript) expr()   {}
func (*Arg) node()         {}
func (*Call) node()        {}
func (*Call) expr()        {}
func (*Param) node()       {}
func (*Lambda) node()      {}
func (*Lambda) expr()      {}
func (*IfExp) node()       {}
func (*IfExp) expr()       {}
func (*NamedExpr) node()   {}
func (*NamedExpr) expr()   {}
func (*Await) node()       {}
func (*Await) expr()       {}
func (*Starred) node()     {}
func (*Starred) expr()     {}
func (*Ellipsis) node()    {}
func (*Ellipsis) expr()    {}

func (*Module) node()       {}
func (*Suite) node()        {}
func (*ExprStmt) node()     {}
func (*ExprStmt) stmt()     {}
func (*AssignTarget) node() {}
func (*Assign) node()       {}
func (*Assign) stmt()       {}
func (*AugAssign) node()    {}
func (*AugAssign) stmt()    {}
func (*AnnAssign) node()    {}
func (*AnnAssign) stmt()    {}
func (*Return) node()       {}
func (*Return) stmt()       {}
func (*Pass) node()         {}
func (*Pass) stmt()         {}
func (*Break) node()        {}
func (*Break) stmt()        {}
func (*Continue) node()     {}
func (*Continue) stmt()     {}
func (*Delete) node()       {}
func (*Delete) stmt()       {}
func (*Assert) node()       {}
func (*Assert) stmt()       {}
func (*Raise) node()        {}
func (*Raise) stmt()        {}
func (*Global) node()       {}
func (*Global) stmt()       {}
func (*Nonlocal) node()     {}
func (*Nonlocal) stmt()     {}
func (*ImportAlias) node()  {}
func (*Import) node()       {}
func (*Import) stmt()       {}
func (*ImportFrom) node()   {}
func (*ImportFrom) stmt()   {}
func (*If) node()           {}
func (*If) stmt()           {}
func (*Else) node()         {}
func (*Else) stmt()         {}
func (*While) node()        {}
func (*While) stmt()        {}
func (*For) node()          {}
func (*For) stmt()          {}
func (*WithItem) node()     {}
func (*With) node()         {}
func (*With) stmt()         {}
func (*Except) node()       {}
func (*Finally) node()      {}
func (*Try) node()          {}
func (*Try) stmt()          {}
func (*Decorator) node()    {}
func (*FuncDef) node()      {}
func (*FuncDef) stmt()      {}
func (*ClassDef) node()     {}
func (*ClassDef) stmt()     {}
