package pycst

import (
	"fmt"
	"reflect"
	"strings"
)

// ParseError reports a syntax error with its source position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse parses a complete source file.
func Parse(src string) (*Module, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var body []Stmt
	for p.cur().kind != tkEOF {
		if p.cur().kind == tkIndent {
			return nil, p.errorf("unexpected indent")
		}
		stmts, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	eof := p.next()
	return &Module{Body: body, EOF: eof}, nil
}

// ParseExpr parses a single expression, which may be a bare tuple.
// Trailing trivia after the expression is discarded.
func ParseExpr(src string) (Expr, error) {
	e, _, err := parseExprSource(src)
	return e, err
}

// ParseStmt parses exactly one statement.
func ParseStmt(src string) (Stmt, error) {
	m, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(m.Body) != 1 {
		return nil, &ParseError{Line: 1, Col: 1, Msg: fmt.Sprintf("expected exactly one statement, found %d", len(m.Body))}
	}
	return m.Body[0], nil
}

func parseExprSource(src string) (Expr, string, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, "", err
	}
	p := &parser{toks: toks}
	e, err := p.testlistStar()
	if err != nil {
		return nil, "", err
	}
	if p.cur().kind == tkNewline {
		p.pos++
	}
	if p.cur().kind != tkEOF {
		return nil, "", p.errorf("unexpected %s after expression", p.describe())
	}
	return e, p.cur().lead, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peekTok(off int) token {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+off]
}

// next consumes the current token and returns it as a Tok.
func (p *parser) next() Tok {
	t := p.toks[p.pos]
	if t.kind != tkEOF {
		p.pos++
	}
	return Tok{Lead: t.lead, Text: t.text}
}

func (p *parser) errorf(format string, args ...any) error {
	t := p.cur()
	return &ParseError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) describe() string {
	t := p.cur()
	switch t.kind {
	case tkEOF:
		return "end of input"
	case tkNewline:
		return "end of line"
	case tkIndent:
		return "indent"
	case tkDedent:
		return "dedent"
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

func (p *parser) atOp(text string) bool {
	t := p.cur()
	return t.kind == tkOp && t.text == text
}

func (p *parser) atKw(text string) bool {
	t := p.cur()
	return t.kind == tkName && t.text == text
}

func (p *parser) atName() bool {
	t := p.cur()
	return t.kind == tkName && !reserved[t.text]
}

func (p *parser) peekOp(off int, text string) bool {
	t := p.peekTok(off)
	return t.kind == tkOp && t.text == text
}

func (p *parser) peekKw(off int, text string) bool {
	t := p.peekTok(off)
	return t.kind == tkName && t.text == text
}

func (p *parser) expectOp(text string) (Tok, error) {
	if !p.atOp(text) {
		return Tok{}, p.errorf("expected %q, found %s", text, p.describe())
	}
	return p.next(), nil
}

func (p *parser) expectKw(text string) (Tok, error) {
	if !p.atKw(text) {
		return Tok{}, p.errorf("expected %q, found %s", text, p.describe())
	}
	return p.next(), nil
}

func (p *parser) name() (*Name, error) {
	if !p.atName() {
		return nil, p.errorf("expected name, found %s", p.describe())
	}
	return &Name{Val: p.next()}, nil
}

func (p *parser) endOfLine() error {
	switch p.cur().kind {
	case tkNewline:
		p.pos++
		return nil
	case tkEOF:
		return nil
	default:
		return p.errorf("expected end of line, found %s", p.describe())
	}
}

var reserved = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

var augOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true,
	"%=": true, "@=": true, "&=": true, "|=": true, "^=": true,
	">>=": true, "<<=": true, "**=": true,
}

// atExprStart reports whether the current token can begin an expression.
func (p *parser) atExprStart() bool {
	t := p.cur()
	switch t.kind {
	case tkInt, tkFloat, tkImag, tkStr, tkFStr:
		return true
	case tkName:
		if !reserved[t.text] {
			return true
		}
		switch t.text {
		case "True", "False", "None", "not", "lambda", "await":
			return true
		}
		return false
	case tkOp:
		switch t.text {
		case "(", "[", "{", "+", "-", "~", "*", "...":
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Statements

func (p *parser) statement() ([]Stmt, error) {
	s, ok, err := p.compound()
	if err != nil {
		return nil, err
	}
	if ok {
		return []Stmt{s}, nil
	}
	return p.simpleLine()
}

func (p *parser) compound() (Stmt, bool, error) {
	t := p.cur()
	if t.kind == tkOp && t.text == "@" {
		s, err := p.decorated()
		return s, true, err
	}
	if t.kind != tkName {
		return nil, false, nil
	}
	var s Stmt
	var err error
	switch t.text {
	case "if":
		s, err = p.ifStmt()
	case "while":
		s, err = p.whileStmt()
	case "for":
		s, err = p.forStmt(nil)
	case "try":
		s, err = p.tryStmt()
	case "with":
		s, err = p.withStmt(nil)
	case "def":
		s, err = p.funcDef(nil, nil)
	case "class":
		s, err = p.classDef(nil)
	case "async":
		nxt := p.peekTok(1)
		if nxt.kind != tkName {
			return nil, false, p.errorf("expected \"def\", \"for\" or \"with\" after \"async\"")
		}
		switch nxt.text {
		case "def":
			async := p.next()
			s, err = p.funcDef(nil, &async)
		case "for":
			async := p.next()
			s, err = p.forStmt(&async)
		case "with":
			async := p.next()
			s, err = p.withStmt(&async)
		default:
			return nil, false, p.errorf("expected \"def\", \"for\" or \"with\" after \"async\"")
		}
	default:
		return nil, false, nil
	}
	return s, true, err
}

func (p *parser) decorated() (Stmt, error) {
	var decs []*Decorator
	for p.atOp("@") {
		at := p.next()
		v, err := p.namedTest()
		if err != nil {
			return nil, err
		}
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
		decs = append(decs, &Decorator{At: at, Value: v})
	}
	switch {
	case p.atKw("def"):
		return p.funcDef(decs, nil)
	case p.atKw("class"):
		return p.classDef(decs)
	case p.atKw("async") && p.peekKw(1, "def"):
		async := p.next()
		return p.funcDef(decs, &async)
	}
	return nil, p.errorf("expected function or class definition after decorators")
}

func (p *parser) ifStmt() (Stmt, error) {
	kw := p.next()
	return p.ifTail(kw)
}

func (p *parser) ifTail(kw Tok) (Stmt, error) {
	cond, err := p.namedTest()
	if err != nil {
		return nil, err
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	node := &If{Kw: kw, Cond: cond, Colon: colon, Body: body}
	switch {
	case p.atKw("elif"):
		elifKw := p.next()
		orelse, err := p.ifTail(elifKw)
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	case p.atKw("else"):
		orelse, err := p.elseClause()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) elseClause() (*Else, error) {
	kw := p.next()
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &Else{Kw: kw, Colon: colon, Body: body}, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	kw := p.next()
	cond, err := p.namedTest()
	if err != nil {
		return nil, err
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	node := &While{Kw: kw, Cond: cond, Colon: colon, Body: body}
	if p.atKw("else") {
		orelse, err := p.elseClause()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) forStmt(async *Tok) (Stmt, error) {
	kw := p.next()
	target, err := p.targetList()
	if err != nil {
		return nil, err
	}
	inKw, err := p.expectKw("in")
	if err != nil {
		return nil, err
	}
	iter, err := p.testlistStar()
	if err != nil {
		return nil, err
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	node := &For{Async: async, Kw: kw, Target: target, InKw: inKw, Iter: iter, Colon: colon, Body: body}
	if p.atKw("else") {
		orelse, err := p.elseClause()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) withStmt(async *Tok) (Stmt, error) {
	kw := p.next()
	var items []*WithItem
	for {
		ctx, err := p.test()
		if err != nil {
			return nil, err
		}
		it := &WithItem{Ctx: ctx}
		if p.atKw("as") {
			as := p.next()
			it.AsKw = &as
			it.Var, err = p.bitOr()
			if err != nil {
				return nil, err
			}
		}
		if p.atOp(",") {
			c := p.next()
			it.Comma = &c
			items = append(items, it)
			continue
		}
		items = append(items, it)
		break
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	return &With{Async: async, Kw: kw, Items: items, Colon: colon, Body: body}, nil
}

func (p *parser) tryStmt() (Stmt, error) {
	kw := p.next()
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	node := &Try{Kw: kw, Colon: colon, Body: body}
	for p.atKw("except") {
		h, err := p.exceptClause()
		if err != nil {
			return nil, err
		}
		node.Handlers = append(node.Handlers, h)
	}
	if p.atKw("else") {
		if len(node.Handlers) == 0 {
			return nil, p.errorf("try statement must have an except clause before else")
		}
		orelse, err := p.elseClause()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	if p.atKw("finally") {
		fkw := p.next()
		fcolon, err := p.expectOp(":")
		if err != nil {
			return nil, err
		}
		fbody, err := p.suite()
		if err != nil {
			return nil, err
		}
		node.Final = &Finally{Kw: fkw, Colon: fcolon, Body: fbody}
	}
	if len(node.Handlers) == 0 && node.Final == nil {
		return nil, p.errorf("try statement must have an except or finally clause")
	}
	return node, nil
}

func (p *parser) exceptClause() (*Except, error) {
	kw := p.next()
	h := &Except{Kw: kw}
	if !p.atOp(":") {
		typ, err := p.test()
		if err != nil {
			return nil, err
		}
		h.Type = typ
		if p.atKw("as") {
			as := p.next()
			h.AsKw = &as
			h.Name, err = p.name()
			if err != nil {
				return nil, err
			}
		}
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	h.Colon = colon
	body, err := p.suite()
	if err != nil {
		return nil, err
	}
	h.Body = body
	return h, nil
}

func (p *parser) funcDef(decs []*Decorator, async *Tok) (Stmt, error) {
	kw := p.next()
	nm, err := p.name()
	if err != nil {
		return nil, err
	}
	lpar, err := p.expectOp("(")
	if err != nil {
		return nil, err
	}
	params, err := p.paramList(false, ")")
	if err != nil {
		return nil, err
	}
	rpar, err := p.expectOp(")")
	if err != nil {
		return nil, err
	}
	node := &FuncDef{Decorators: decs, Async: async, Kw: kw, Name: nm, LPar: lpar, Params: params, RPar: rpar}
	if p.atOp("->") {
		arrow := p.next()
		node.Arrow = &arrow
		node.Returns, err = p.test()
		if err != nil {
			return nil, err
		}
	}
	node.Colon, err = p.expectOp(":")
	if err != nil {
		return nil, err
	}
	node.Body, err = p.suite()
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) classDef(decs []*Decorator) (Stmt, error) {
	kw := p.next()
	nm, err := p.name()
	if err != nil {
		return nil, err
	}
	node := &ClassDef{Decorators: decs, Kw: kw, Name: nm}
	if p.atOp("(") {
		lpar := p.next()
		node.LPar = &lpar
		node.Args, err = p.argList()
		if err != nil {
			return nil, err
		}
		rpar, err := p.expectOp(")")
		if err != nil {
			return nil, err
		}
		node.RPar = &rpar
	}
	node.Colon, err = p.expectOp(":")
	if err != nil {
		return nil, err
	}
	node.Body, err = p.suite()
	if err != nil {
		return nil, err
	}
	return node, nil
}

// suite parses the body after a header colon: either an inline statement
// list on the same line or an indented block.
func (p *parser) suite() (*Suite, error) {
	if p.cur().kind != tkNewline {
		stmts, err := p.simpleLine()
		if err != nil {
			return nil, err
		}
		return &Suite{Stmts: stmts}, nil
	}
	p.pos++
	if p.cur().kind != tkIndent {
		return nil, p.errorf("expected an indented block")
	}
	p.pos++
	var stmts []Stmt
	for p.cur().kind != tkDedent && p.cur().kind != tkEOF {
		ss, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ss...)
	}
	if p.cur().kind == tkDedent {
		p.pos++
	}
	return &Suite{Stmts: stmts}, nil
}

func (p *parser) simpleLine() ([]Stmt, error) {
	var out []Stmt
	for {
		s, err := p.smallStmt()
		if err != nil {
			return nil, err
		}
		if p.atOp(";") {
			semi := p.next()
			setSemi(s, &semi)
			out = append(out, s)
			if p.cur().kind == tkNewline || p.cur().kind == tkEOF {
				break
			}
			continue
		}
		out = append(out, s)
		break
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return out, nil
}

func setSemi(s Stmt, semi *Tok) {
	switch n := s.(type) {
	case *ExprStmt:
		n.Semi = semi
	case *Assign:
		n.Semi = semi
	case *AugAssign:
		n.Semi = semi
	case *AnnAssign:
		n.Semi = semi
	case *Return:
		n.Semi = semi
	case *Pass:
		n.Semi = semi
	case *Break:
		n.Semi = semi
	case *Continue:
		n.Semi = semi
	case *Delete:
		n.Semi = semi
	case *Assert:
		n.Semi = semi
	case *Raise:
		n.Semi = semi
	case *Global:
		n.Semi = semi
	case *Nonlocal:
		n.Semi = semi
	case *Import:
		n.Semi = semi
	case *ImportFrom:
		n.Semi = semi
	}
}

func (p *parser) smallStmt() (Stmt, error) {
	t := p.cur()
	if t.kind == tkName {
		switch t.text {
		case "pass":
			return &Pass{Kw: p.next()}, nil
		case "break":
			return &Break{Kw: p.next()}, nil
		case "continue":
			return &Continue{Kw: p.next()}, nil
		case "return":
			return p.returnStmt()
		case "raise":
			return p.raiseStmt()
		case "del":
			return p.delStmt()
		case "assert":
			return p.assertStmt()
		case "global":
			kw := p.next()
			names, err := p.nameElements()
			if err != nil {
				return nil, err
			}
			return &Global{Kw: kw, Names: names}, nil
		case "nonlocal":
			kw := p.next()
			names, err := p.nameElements()
			if err != nil {
				return nil, err
			}
			return &Nonlocal{Kw: kw, Names: names}, nil
		case "import":
			return p.importStmt()
		case "from":
			return p.fromStmt()
		case "yield":
			return nil, p.errorf("yield is not supported")
		}
	}
	return p.exprStatement()
}

func (p *parser) returnStmt() (Stmt, error) {
	kw := p.next()
	node := &Return{Kw: kw}
	if p.atExprStart() {
		v, err := p.testlistStar()
		if err != nil {
			return nil, err
		}
		node.Value = v
	}
	return node, nil
}

func (p *parser) raiseStmt() (Stmt, error) {
	kw := p.next()
	node := &Raise{Kw: kw}
	if p.atExprStart() {
		exc, err := p.test()
		if err != nil {
			return nil, err
		}
		node.Exc = exc
		if p.atKw("from") {
			from := p.next()
			node.FromKw = &from
			node.Cause, err = p.test()
			if err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

func (p *parser) delStmt() (Stmt, error) {
	kw := p.next()
	var targets []*Element
	for {
		v, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: v}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			targets = append(targets, el)
			if !p.atExprStart() {
				break
			}
			continue
		}
		targets = append(targets, el)
		break
	}
	return &Delete{Kw: kw, Targets: targets}, nil
}

func (p *parser) assertStmt() (Stmt, error) {
	kw := p.next()
	cond, err := p.test()
	if err != nil {
		return nil, err
	}
	node := &Assert{Kw: kw, Cond: cond}
	if p.atOp(",") {
		comma := p.next()
		node.Comma = &comma
		node.Msg, err = p.test()
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *parser) nameElements() ([]*Element, error) {
	var out []*Element
	for {
		nm, err := p.name()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: nm}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			out = append(out, el)
			continue
		}
		out = append(out, el)
		break
	}
	return out, nil
}

func (p *parser) dottedName() (Expr, error) {
	nm, err := p.name()
	if err != nil {
		return nil, err
	}
	var value Expr = nm
	for p.atOp(".") {
		dot := p.next()
		attr, err := p.name()
		if err != nil {
			return nil, err
		}
		value = &Attribute{Value: value, Dot: dot, Attr: attr}
	}
	return value, nil
}

func (p *parser) importStmt() (Stmt, error) {
	kw := p.next()
	var names []*ImportAlias
	for {
		nm, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		al := &ImportAlias{Name: nm}
		if p.atKw("as") {
			as := p.next()
			al.AsKw = &as
			al.Alias, err = p.name()
			if err != nil {
				return nil, err
			}
		}
		if p.atOp(",") {
			c := p.next()
			al.Comma = &c
			names = append(names, al)
			continue
		}
		names = append(names, al)
		break
	}
	return &Import{Kw: kw, Names: names}, nil
}

func (p *parser) fromStmt() (Stmt, error) {
	fromKw := p.next()
	node := &ImportFrom{FromKw: fromKw}
	for p.atOp(".") || p.atOp("...") {
		node.Dots = append(node.Dots, p.next())
	}
	if p.atName() {
		mod, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		node.Module = mod
	} else if len(node.Dots) == 0 {
		return nil, p.errorf("expected module name, found %s", p.describe())
	}
	kw, err := p.expectKw("import")
	if err != nil {
		return nil, err
	}
	node.Kw = kw
	switch {
	case p.atOp("*"):
		star := p.next()
		node.Star = &star
	case p.atOp("("):
		lpar := p.next()
		node.LPar = &lpar
		node.Names, err = p.importAliases(true)
		if err != nil {
			return nil, err
		}
		rpar, err := p.expectOp(")")
		if err != nil {
			return nil, err
		}
		node.RPar = &rpar
	default:
		node.Names, err = p.importAliases(false)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *parser) importAliases(paren bool) ([]*ImportAlias, error) {
	var out []*ImportAlias
	for {
		nm, err := p.name()
		if err != nil {
			return nil, err
		}
		al := &ImportAlias{Name: nm}
		if p.atKw("as") {
			as := p.next()
			al.AsKw = &as
			al.Alias, err = p.name()
			if err != nil {
				return nil, err
			}
		}
		if p.atOp(",") {
			c := p.next()
			al.Comma = &c
			out = append(out, al)
			if paren && p.atOp(")") {
				break
			}
			continue
		}
		out = append(out, al)
		break
	}
	return out, nil
}

func (p *parser) exprStatement() (Stmt, error) {
	first, err := p.testlistStar()
	if err != nil {
		return nil, err
	}
	switch {
	case p.atOp("="):
		var targets []*AssignTarget
		cur := first
		for p.atOp("=") {
			eq := p.next()
			targets = append(targets, &AssignTarget{Target: cur, Eq: eq})
			cur, err = p.testlistStar()
			if err != nil {
				return nil, err
			}
		}
		return &Assign{Targets: targets, Value: cur}, nil
	case p.cur().kind == tkOp && augOps[p.cur().text]:
		op := p.next()
		value, err := p.testlistStar()
		if err != nil {
			return nil, err
		}
		return &AugAssign{Target: first, Op: op, Value: value}, nil
	case p.atOp(":"):
		colon := p.next()
		ann, err := p.test()
		if err != nil {
			return nil, err
		}
		node := &AnnAssign{Target: first, Colon: colon, Ann: ann}
		if p.atOp("=") {
			eq := p.next()
			node.Eq = &eq
			node.Value, err = p.testlistStar()
			if err != nil {
				return nil, err
			}
		}
		return node, nil
	}
	return &ExprStmt{Value: first}, nil
}

// ---------------------------------------------------------------------------
// Expressions

// testlistStar parses a possibly bare tuple: item (',' item)* [','].
func (p *parser) testlistStar() (Expr, error) {
	first, err := p.testOrStar()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	comma := p.next()
	elts := []*Element{{Value: first, Comma: &comma}}
	for p.atExprStart() {
		v, err := p.testOrStar()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: v}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			elts = append(elts, el)
			continue
		}
		elts = append(elts, el)
		break
	}
	return &Tuple{Elts: elts}, nil
}

func (p *parser) testOrStar() (Expr, error) {
	if p.atOp("*") {
		star := p.next()
		v, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		return &Starred{Star: star, Value: v}, nil
	}
	return p.test()
}

// targetList parses assignment targets of a for loop or comprehension.
func (p *parser) targetList() (Expr, error) {
	first, err := p.targetItem()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	comma := p.next()
	elts := []*Element{{Value: first, Comma: &comma}}
	for p.atExprStart() {
		v, err := p.targetItem()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: v}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			elts = append(elts, el)
			continue
		}
		elts = append(elts, el)
		break
	}
	return &Tuple{Elts: elts}, nil
}

func (p *parser) targetItem() (Expr, error) {
	if p.atOp("*") {
		star := p.next()
		v, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		return &Starred{Star: star, Value: v}, nil
	}
	return p.bitOr()
}

// namedTest parses test [':=' test].
func (p *parser) namedTest() (Expr, error) {
	t, err := p.test()
	if err != nil {
		return nil, err
	}
	if !p.atOp(":=") {
		return t, nil
	}
	if _, ok := t.(*Name); !ok {
		return nil, p.errorf("invalid target for \":=\" assignment")
	}
	op := p.next()
	v, err := p.test()
	if err != nil {
		return nil, err
	}
	return &NamedExpr{Target: t, Op: op, Value: v}, nil
}

func (p *parser) test() (Expr, error) {
	if p.atKw("lambda") {
		return p.lambda()
	}
	body, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.atKw("if") {
		return body, nil
	}
	ifKw := p.next()
	cond, err := p.orTest()
	if err != nil {
		return nil, err
	}
	elseKw, err := p.expectKw("else")
	if err != nil {
		return nil, err
	}
	orelse, err := p.test()
	if err != nil {
		return nil, err
	}
	return &IfExp{Body: body, IfKw: ifKw, Cond: cond, ElseKw: elseKw, Orelse: orelse}, nil
}

func (p *parser) lambda() (Expr, error) {
	kw := p.next()
	params, err := p.paramList(true, ":")
	if err != nil {
		return nil, err
	}
	colon, err := p.expectOp(":")
	if err != nil {
		return nil, err
	}
	body, err := p.test()
	if err != nil {
		return nil, err
	}
	return &Lambda{Kw: kw, Params: params, Colon: colon, Body: body}, nil
}

func (p *parser) orTest() (Expr, error) {
	left, err := p.andTest()
	if err != nil {
		return nil, err
	}
	for p.atKw("or") {
		op := p.next()
		right, err := p.andTest()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) andTest() (Expr, error) {
	left, err := p.notTest()
	if err != nil {
		return nil, err
	}
	for p.atKw("and") {
		op := p.next()
		right, err := p.notTest()
		if err != nil {
			return nil, err
		}
		left = &BoolOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) notTest() (Expr, error) {
	if p.atKw("not") {
		op := p.next()
		operand, err := p.notTest()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (Expr, error) {
	left, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	var terms []*CompareTerm
	for {
		op, ok, err := p.compOp()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		right, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		terms = append(terms, &CompareTerm{Op: op, Right: right})
	}
	if len(terms) == 0 {
		return left, nil
	}
	return &Compare{Left: left, Terms: terms}, nil
}

// compOp consumes one comparison operator if present. Two word operators
// keep their exact source span, inner trivia included.
func (p *parser) compOp() (Tok, bool, error) {
	t := p.cur()
	if t.kind == tkOp {
		switch t.text {
		case "<", ">", "<=", ">=", "==", "!=":
			return p.next(), true, nil
		}
		return Tok{}, false, nil
	}
	if t.kind != tkName {
		return Tok{}, false, nil
	}
	switch t.text {
	case "in":
		return p.next(), true, nil
	case "is":
		op := p.next()
		if p.atKw("not") {
			second := p.next()
			op.Text += second.Lead + second.Text
		}
		return op, true, nil
	case "not":
		if !p.peekKw(1, "in") {
			return Tok{}, false, nil
		}
		op := p.next()
		second := p.next()
		op.Text += second.Lead + second.Text
		return op, true, nil
	}
	return Tok{}, false, nil
}

func (p *parser) bitOr() (Expr, error)  { return p.binaryChain(p.bitXor, "|") }
func (p *parser) bitXor() (Expr, error) { return p.binaryChain(p.bitAnd, "^") }
func (p *parser) bitAnd() (Expr, error) { return p.binaryChain(p.shift, "&") }
func (p *parser) shift() (Expr, error)  { return p.binaryChain(p.arith, "<<", ">>") }
func (p *parser) arith() (Expr, error)  { return p.binaryChain(p.term, "+", "-") }
func (p *parser) term() (Expr, error) {
	return p.binaryChain(p.factor, "*", "/", "//", "%", "@")
}

func (p *parser) binaryChain(operand func() (Expr, error), ops ...string) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.atOp(op) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		op := p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Left: left, Op: op, Right: right}
	}
}

func (p *parser) factor() (Expr, error) {
	if p.atOp("+") || p.atOp("-") || p.atOp("~") {
		op := p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.atomExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp("**") {
		return base, nil
	}
	op := p.next()
	right, err := p.factor()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Left: base, Op: op, Right: right}, nil
}

func (p *parser) atomExpr() (Expr, error) {
	if p.atKw("await") {
		kw := p.next()
		value, err := p.trailers()
		if err != nil {
			return nil, err
		}
		return &Await{Kw: kw, Value: value}, nil
	}
	return p.trailers()
}

func (p *parser) trailers() (Expr, error) {
	value, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atOp("("):
			lpar := p.next()
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			rpar, err := p.expectOp(")")
			if err != nil {
				return nil, err
			}
			value = &Call{Func: value, LPar: lpar, Args: args, RPar: rpar}
		case p.atOp("["):
			lbrack := p.next()
			index, err := p.subscriptIndex()
			if err != nil {
				return nil, err
			}
			rbrack, err := p.expectOp("]")
			if err != nil {
				return nil, err
			}
			value = &Subscript{Value: value, LBrack: lbrack, Index: index, RBrack: rbrack}
		case p.atOp("."):
			dot := p.next()
			attr, err := p.name()
			if err != nil {
				return nil, err
			}
			value = &Attribute{Value: value, Dot: dot, Attr: attr}
		default:
			return value, nil
		}
	}
}

func (p *parser) atom() (Expr, error) {
	t := p.cur()
	switch t.kind {
	case tkName:
		if !reserved[t.text] {
			return &Name{Val: p.next()}, nil
		}
		switch t.text {
		case "True", "False", "None":
			return &Name{Val: p.next()}, nil
		case "lambda":
			return p.lambda()
		}
		return nil, p.errorf("expected expression, found %s", p.describe())
	case tkInt:
		return &IntLit{Val: p.next()}, nil
	case tkFloat:
		return &FloatLit{Val: p.next()}, nil
	case tkImag:
		return &ImagLit{Val: p.next()}, nil
	case tkStr, tkFStr:
		return p.stringAtom()
	case tkOp:
		switch t.text {
		case "...":
			return &Ellipsis{Val: p.next()}, nil
		case "(":
			return p.parenAtom()
		case "[":
			return p.listAtom()
		case "{":
			return p.braceAtom()
		}
	}
	return nil, p.errorf("expected expression, found %s", p.describe())
}

func (p *parser) stringAtom() (Expr, error) {
	var parts []Expr
	for {
		t := p.cur()
		switch t.kind {
		case tkStr:
			parts = append(parts, &StrLit{Val: p.next()})
			continue
		case tkFStr:
			fs, err := p.fstring()
			if err != nil {
				return nil, err
			}
			parts = append(parts, fs)
			continue
		}
		break
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return &ConcatStr{Parts: parts}, nil
}

func (p *parser) atCompFor() bool {
	return p.atKw("for") || (p.atKw("async") && p.peekKw(1, "for"))
}

func (p *parser) compClauses() ([]Node, error) {
	var out []Node
	for {
		switch {
		case p.atCompFor():
			var async *Tok
			if p.atKw("async") {
				a := p.next()
				async = &a
			}
			forKw := p.next()
			target, err := p.targetList()
			if err != nil {
				return nil, err
			}
			inKw, err := p.expectKw("in")
			if err != nil {
				return nil, err
			}
			iter, err := p.orTest()
			if err != nil {
				return nil, err
			}
			out = append(out, &CompFor{Async: async, ForKw: forKw, Target: target, InKw: inKw, Iter: iter})
		case p.atKw("if"):
			ifKw := p.next()
			cond, err := p.orTest()
			if err != nil {
				return nil, err
			}
			out = append(out, &CompIf{IfKw: ifKw, Cond: cond})
		default:
			return out, nil
		}
	}
}

func (p *parser) displayItem() (Expr, error) {
	if p.atOp("*") {
		star := p.next()
		v, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		return &Starred{Star: star, Value: v}, nil
	}
	return p.namedTest()
}

// displayElements parses the rest of a comma-separated element list up to
// the closing bracket.
func (p *parser) displayElements(first Expr, term string) ([]*Element, error) {
	el := &Element{Value: first}
	if p.atOp(",") {
		c := p.next()
		el.Comma = &c
	}
	out := []*Element{el}
	if el.Comma == nil {
		return out, nil
	}
	for !p.atOp(term) {
		v, err := p.displayItem()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: v}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			out = append(out, el)
			continue
		}
		out = append(out, el)
		break
	}
	return out, nil
}

func (p *parser) parenAtom() (Expr, error) {
	lpar := p.next()
	if p.atOp(")") {
		rpar := p.next()
		return &Tuple{Parens: Parens{{L: lpar, R: rpar}}}, nil
	}
	first, err := p.displayItem()
	if err != nil {
		return nil, err
	}
	if p.atCompFor() {
		clauses, err := p.compClauses()
		if err != nil {
			return nil, err
		}
		rpar, err := p.expectOp(")")
		if err != nil {
			return nil, err
		}
		return &GenExp{Parens: Parens{{L: lpar, R: rpar}}, Elt: first, Clauses: clauses}, nil
	}
	if p.atOp(",") {
		elts, err := p.displayElements(first, ")")
		if err != nil {
			return nil, err
		}
		rpar, err := p.expectOp(")")
		if err != nil {
			return nil, err
		}
		return &Tuple{Parens: Parens{{L: lpar, R: rpar}}, Elts: elts}, nil
	}
	rpar, err := p.expectOp(")")
	if err != nil {
		return nil, err
	}
	return addParens(first, ParenPair{L: lpar, R: rpar}), nil
}

func (p *parser) listAtom() (Expr, error) {
	lbrack := p.next()
	if p.atOp("]") {
		rbrack := p.next()
		return &List{LBrack: lbrack, RBrack: rbrack}, nil
	}
	first, err := p.displayItem()
	if err != nil {
		return nil, err
	}
	if p.atCompFor() {
		clauses, err := p.compClauses()
		if err != nil {
			return nil, err
		}
		rbrack, err := p.expectOp("]")
		if err != nil {
			return nil, err
		}
		return &ListComp{LBrack: lbrack, Elt: first, Clauses: clauses, RBrack: rbrack}, nil
	}
	elts, err := p.displayElements(first, "]")
	if err != nil {
		return nil, err
	}
	rbrack, err := p.expectOp("]")
	if err != nil {
		return nil, err
	}
	return &List{LBrack: lbrack, Elts: elts, RBrack: rbrack}, nil
}

func (p *parser) braceAtom() (Expr, error) {
	lbrace := p.next()
	if p.atOp("}") {
		rbrace := p.next()
		return &Dict{LBrace: lbrace, RBrace: rbrace}, nil
	}
	if p.atOp("**") {
		items, err := p.dictItems(nil)
		if err != nil {
			return nil, err
		}
		rbrace, err := p.expectOp("}")
		if err != nil {
			return nil, err
		}
		return &Dict{LBrace: lbrace, Items: items, RBrace: rbrace}, nil
	}
	first, err := p.displayItem()
	if err != nil {
		return nil, err
	}
	if p.atOp(":") {
		colon := p.next()
		value, err := p.test()
		if err != nil {
			return nil, err
		}
		if p.atCompFor() {
			clauses, err := p.compClauses()
			if err != nil {
				return nil, err
			}
			rbrace, err := p.expectOp("}")
			if err != nil {
				return nil, err
			}
			return &DictComp{LBrace: lbrace, Key: first, Colon: colon, Value: value, Clauses: clauses, RBrace: rbrace}, nil
		}
		item := &DictItem{Key: first, Colon: &colon, Value: value}
		if p.atOp(",") {
			c := p.next()
			item.Comma = &c
		}
		var items []*DictItem
		if item.Comma != nil {
			items, err = p.dictItems(item)
			if err != nil {
				return nil, err
			}
		} else {
			items = []*DictItem{item}
		}
		rbrace, err := p.expectOp("}")
		if err != nil {
			return nil, err
		}
		return &Dict{LBrace: lbrace, Items: items, RBrace: rbrace}, nil
	}
	if p.atCompFor() {
		clauses, err := p.compClauses()
		if err != nil {
			return nil, err
		}
		rbrace, err := p.expectOp("}")
		if err != nil {
			return nil, err
		}
		return &SetComp{LBrace: lbrace, Elt: first, Clauses: clauses, RBrace: rbrace}, nil
	}
	elts, err := p.displayElements(first, "}")
	if err != nil {
		return nil, err
	}
	rbrace, err := p.expectOp("}")
	if err != nil {
		return nil, err
	}
	return &Set{LBrace: lbrace, Elts: elts, RBrace: rbrace}, nil
}

// dictItems parses dict entries up to the closing brace. first, when non
// nil, is a completed entry whose comma has been consumed.
func (p *parser) dictItems(first *DictItem) ([]*DictItem, error) {
	var out []*DictItem
	if first != nil {
		out = append(out, first)
	}
	for !p.atOp("}") {
		item := &DictItem{}
		if p.atOp("**") {
			star := p.next()
			item.Star = &star
			v, err := p.bitOr()
			if err != nil {
				return nil, err
			}
			item.Value = v
		} else {
			key, err := p.test()
			if err != nil {
				return nil, err
			}
			colon, err := p.expectOp(":")
			if err != nil {
				return nil, err
			}
			value, err := p.test()
			if err != nil {
				return nil, err
			}
			item.Key = key
			item.Colon = &colon
			item.Value = value
		}
		if p.atOp(",") {
			c := p.next()
			item.Comma = &c
			out = append(out, item)
			continue
		}
		out = append(out, item)
		break
	}
	return out, nil
}

func (p *parser) argList() ([]*Arg, error) {
	var out []*Arg
	for !p.atOp(")") {
		a := &Arg{}
		switch {
		case p.atOp("*"), p.atOp("**"):
			star := p.next()
			a.Star = &star
			v, err := p.test()
			if err != nil {
				return nil, err
			}
			a.Value = v
		case p.atName() && p.peekOp(1, "="):
			nm, err := p.name()
			if err != nil {
				return nil, err
			}
			eq := p.next()
			v, err := p.test()
			if err != nil {
				return nil, err
			}
			a.Kw = nm
			a.Eq = &eq
			a.Value = v
		default:
			v, err := p.namedTest()
			if err != nil {
				return nil, err
			}
			if p.atCompFor() {
				if len(out) > 0 {
					return nil, p.errorf("generator expression must be parenthesized")
				}
				clauses, err := p.compClauses()
				if err != nil {
					return nil, err
				}
				a.Value = &GenExp{Elt: v, Clauses: clauses}
				out = append(out, a)
				if !p.atOp(")") {
					return nil, p.errorf("generator expression must be parenthesized")
				}
				return out, nil
			}
			a.Value = v
		}
		if p.atOp(",") {
			c := p.next()
			a.Comma = &c
			out = append(out, a)
			continue
		}
		out = append(out, a)
		break
	}
	return out, nil
}

func (p *parser) subscriptIndex() (Expr, error) {
	if p.atOp("]") {
		return nil, p.errorf("expected subscript, found %q", "]")
	}
	first, err := p.subscriptItem()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	comma := p.next()
	elts := []*Element{{Value: first, Comma: &comma}}
	for !p.atOp("]") {
		v, err := p.subscriptItem()
		if err != nil {
			return nil, err
		}
		el := &Element{Value: v}
		if p.atOp(",") {
			c := p.next()
			el.Comma = &c
			elts = append(elts, el)
			continue
		}
		elts = append(elts, el)
		break
	}
	return &Tuple{Elts: elts}, nil
}

func (p *parser) subscriptItem() (Expr, error) {
	var lower Expr
	if !p.atOp(":") {
		v, err := p.testOrStar()
		if err != nil {
			return nil, err
		}
		if !p.atOp(":") {
			return v, nil
		}
		lower = v
	}
	colon1 := p.next()
	sl := &Slice{Lower: lower, Colon1: colon1}
	if p.atExprStart() {
		upper, err := p.test()
		if err != nil {
			return nil, err
		}
		sl.Upper = upper
	}
	if p.atOp(":") {
		colon2 := p.next()
		sl.Colon2 = &colon2
		if p.atExprStart() {
			step, err := p.test()
			if err != nil {
				return nil, err
			}
			sl.Step = step
		}
	}
	return sl, nil
}

// paramList parses parameters up to the terminator. Lambda parameters
// cannot carry annotations.
func (p *parser) paramList(lambdaMode bool, term string) ([]*Param, error) {
	var out []*Param
	for !p.atOp(term) {
		param := &Param{}
		switch {
		case p.atOp("*"), p.atOp("**"), p.atOp("/"):
			star := p.next()
			param.Star = &star
			if p.atName() {
				nm, err := p.name()
				if err != nil {
					return nil, err
				}
				param.Name = nm
			}
		default:
			nm, err := p.name()
			if err != nil {
				return nil, err
			}
			param.Name = nm
		}
		if !lambdaMode && param.Name != nil && p.atOp(":") {
			colon := p.next()
			param.Colon = &colon
			ann, err := p.test()
			if err != nil {
				return nil, err
			}
			param.Ann = ann
		}
		if param.Name != nil && p.atOp("=") {
			eq := p.next()
			param.Eq = &eq
			def, err := p.test()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		if p.atOp(",") {
			c := p.next()
			param.Comma = &c
			out = append(out, param)
			continue
		}
		out = append(out, param)
		break
	}
	return out, nil
}

// addParens attaches a surrounding pair as the new outermost parentheses.
func addParens(e Expr, pr ParenPair) Expr {
	v := reflect.ValueOf(e).Elem().FieldByName("Parens")
	old := v.Interface().(Parens)
	np := make(Parens, 0, len(old)+1)
	np = append(np, pr)
	np = append(np, old...)
	v.Set(reflect.ValueOf(np))
	return e
}

// ---------------------------------------------------------------------------
// F-strings

func (p *parser) fstring() (*FString, error) {
	t := p.cur()
	raw := p.next()
	fs, err := parseFString(raw)
	if err != nil {
		if pe, ok := err.(*ParseError); ok && pe.Line == 0 {
			pe.Line, pe.Col = t.line, t.col
		}
		return nil, err
	}
	return fs, nil
}

func fsErrorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func parseFString(t Tok) (*FString, error) {
	_, n, err := parseStrPrefix(t.Text)
	if err != nil {
		return nil, fsErrorf("%s", err)
	}
	quote, body, err := splitQuotes(t.Text[n:])
	if err != nil {
		return nil, fsErrorf("%s", err)
	}
	fs := &FString{
		Open:  Tok{Lead: t.Lead, Text: t.Text[:n] + quote},
		Close: tok(quote),
	}
	i := 0
	textStart := 0
	flush := func(end int) {
		if end > textStart {
			fs.Parts = append(fs.Parts, &FStringText{Val: tok(body[textStart:end])})
		}
	}
	for i < len(body) {
		switch body[i] {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				i += 2
				continue
			}
			flush(i)
			fe, ni, err := parseFStringField(body, i)
			if err != nil {
				return nil, err
			}
			fs.Parts = append(fs.Parts, fe)
			i = ni
			textStart = i
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				i += 2
				continue
			}
			return nil, fsErrorf("single %q is not allowed in f-string", "}")
		default:
			i++
		}
	}
	flush(len(body))
	return fs, nil
}

// parseFStringField parses one {...} replacement field starting at the
// opening brace. Returns the field and the index just past its close.
func parseFStringField(body string, start int) (*FStringExpr, int, error) {
	fe := &FStringExpr{LBrace: tok("{")}
	j := start + 1
	depth := 0
	exprEnd := -1

scan:
	for j < len(body) {
		c := body[j]
		switch {
		case c == '(' || c == '[':
			depth++
			j++
		case c == ')' || c == ']':
			depth--
			j++
		case c == '{':
			depth++
			j++
		case c == '}':
			if depth == 0 {
				exprEnd = j
				break scan
			}
			depth--
			j++
		case c == '\'' || c == '"':
			nj, err := skipFStringQuote(body, j)
			if err != nil {
				return nil, 0, err
			}
			j = nj
		case depth == 0 && c == '!':
			if j+1 < len(body) && body[j+1] == '=' {
				j += 2
				continue
			}
			exprEnd = j
			break scan
		case depth == 0 && c == ':':
			exprEnd = j
			break scan
		case depth == 0 && c == '=':
			if j+1 < len(body) && body[j+1] == '=' {
				j += 2
				continue
			}
			if j > start+1 && strings.ContainsRune("<>!=+-*/%&|^@", rune(body[j-1])) {
				j++
				continue
			}
			exprEnd = j
			break scan
		default:
			j++
		}
	}
	if exprEnd < 0 {
		return nil, 0, fsErrorf("unterminated replacement field in f-string")
	}
	exprSrc := body[start+1 : exprEnd]
	if strings.TrimSpace(exprSrc) == "" {
		return nil, 0, fsErrorf("empty expression in f-string")
	}
	value, trailing, err := parseExprSource(exprSrc)
	if err != nil {
		return nil, 0, fsErrorf("in f-string expression: %s", err)
	}
	fe.Value = value

	pending := trailing
	j = exprEnd
	if body[j] == '=' {
		eq := Tok{Lead: pending, Text: "="}
		fe.Eq = &eq
		pending = ""
		j++
		for j < len(body) && (body[j] == ' ' || body[j] == '\t') {
			pending += string(body[j])
			j++
		}
	}
	if j < len(body) && body[j] == '!' {
		if j+1 >= len(body) || !strings.ContainsRune("sra", rune(body[j+1])) {
			return nil, 0, fsErrorf("invalid conversion character in f-string")
		}
		conv := Tok{Lead: pending, Text: body[j : j+2]}
		fe.Conv = &conv
		pending = ""
		j += 2
	}
	if j < len(body) && body[j] == ':' {
		specStart := j
		j++
		d := 0
		for j < len(body) {
			if body[j] == '{' {
				d++
			} else if body[j] == '}' {
				if d == 0 {
					break
				}
				d--
			}
			j++
		}
		spec := Tok{Lead: pending, Text: body[specStart:j]}
		fe.Spec = &spec
		pending = ""
	}
	if j >= len(body) || body[j] != '}' {
		return nil, 0, fsErrorf("unterminated replacement field in f-string")
	}
	fe.RBrace = Tok{Lead: pending, Text: "}"}
	return fe, j + 1, nil
}

// skipFStringQuote advances past a string literal nested inside a
// replacement field.
func skipFStringQuote(body string, i int) (int, error) {
	q := body[i]
	long := i+2 < len(body) && body[i+1] == q && body[i+2] == q
	qlen := 1
	if long {
		qlen = 3
	}
	i += qlen
	for i < len(body) {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i += 2
			continue
		}
		if c == q {
			if !long {
				return i + 1, nil
			}
			if i+2 < len(body) && body[i+1] == q && body[i+2] == q {
				return i + 3, nil
			}
		}
		i++
	}
	return 0, fsErrorf("unterminated string inside f-string expression")
}
