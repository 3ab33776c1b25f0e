package pycst

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tkKind int

const (
	tkEOF tkKind = iota
	tkNewline
	tkIndent
	tkDedent
	tkName
	tkInt
	tkFloat
	tkImag
	tkStr
	tkFStr
	tkOp
)

// token is the lexer's output unit. Marker tokens (newline, indent,
// dedent) are zero width: their source bytes travel in the lead of the
// next real token, so concatenating Lead+Text over real tokens restores
// the input exactly.
type token struct {
	kind tkKind
	lead string
	text string
	line int
	col  int
}

type lexer struct {
	src     string
	pos     int
	line    int
	col     int
	lead    strings.Builder
	indents []string
	depth   int
	toks    []token
	atStart bool
}

func lex(src string) ([]token, error) {
	lx := &lexer{src: src, line: 1, col: 1, indents: []string{""}, atStart: true}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

func (lx *lexer) errorf(format string, args ...any) error {
	return &ParseError{Line: lx.line, Col: lx.col, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if lx.src[lx.pos+i] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
	}
	lx.pos += n
}

func (lx *lexer) take(n int) string {
	s := lx.src[lx.pos : lx.pos+n]
	lx.advance(n)
	return s
}

func (lx *lexer) trivia(n int) {
	lx.lead.WriteString(lx.take(n))
}

func (lx *lexer) emit(kind tkKind, text string, line, col int) {
	lx.toks = append(lx.toks, token{kind: kind, lead: lx.lead.String(), text: text, line: line, col: col})
	lx.lead.Reset()
}

func (lx *lexer) marker(kind tkKind) {
	lx.toks = append(lx.toks, token{kind: kind, line: lx.line, col: lx.col})
}

func (lx *lexer) peek(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *lexer) run() error {
	for lx.pos < len(lx.src) {
		if lx.atStart && lx.depth == 0 {
			if done, err := lx.lineStart(); err != nil {
				return err
			} else if done {
				continue
			}
		}

		c := lx.peek(0)
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\r':
			lx.trivia(1)
		case c == '\\' && lx.peek(1) == '\n':
			lx.trivia(2)
		case c == '\\' && lx.peek(1) == '\r' && lx.peek(2) == '\n':
			lx.trivia(3)
		case c == '#':
			lx.comment()
		case c == '\n':
			if lx.depth > 0 {
				lx.trivia(1)
			} else {
				lx.trivia(1)
				lx.marker(tkNewline)
				lx.atStart = true
			}
		default:
			if err := lx.codeToken(); err != nil {
				return err
			}
		}
	}

	if !lx.atStart {
		lx.marker(tkNewline)
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.marker(tkDedent)
	}
	lx.emit(tkEOF, "", lx.line, lx.col)
	return nil
}

// lineStart measures indentation at the start of a logical line. Blank
// and comment-only lines stay trivia. Returns true when the main loop
// should restart (line consumed or markers emitted).
func (lx *lexer) lineStart() (bool, error) {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.peek(0)
		if c == ' ' || c == '\t' || c == '\f' {
			lx.trivia(1)
			continue
		}
		break
	}
	indent := lx.src[start:lx.pos]

	switch lx.peek(0) {
	case '#':
		lx.comment()
		return true, nil
	case '\n':
		lx.trivia(1)
		return true, nil
	case '\r':
		lx.trivia(1)
		return true, nil
	case 0:
		return true, nil
	}

	cur := lx.indents[len(lx.indents)-1]
	switch {
	case indent == cur:
	case strings.HasPrefix(indent, cur):
		lx.indents = append(lx.indents, indent)
		lx.marker(tkIndent)
	default:
		for len(lx.indents) > 1 && lx.indents[len(lx.indents)-1] != indent {
			if !strings.HasPrefix(lx.indents[len(lx.indents)-1], indent) {
				break
			}
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.marker(tkDedent)
		}
		if lx.indents[len(lx.indents)-1] != indent {
			return false, lx.errorf("unindent does not match any outer level")
		}
	}
	lx.atStart = false
	return false, nil
}

func (lx *lexer) comment() {
	n := 0
	for lx.pos+n < len(lx.src) && lx.src[lx.pos+n] != '\n' {
		n++
	}
	lx.trivia(n)
}

var stringPrefixes = map[string]bool{
	"r": true, "b": true, "u": true, "f": true,
	"rb": true, "br": true, "rf": true, "fr": true,
}

func isStringPrefix(s string) bool {
	return stringPrefixes[strings.ToLower(s)]
}

func (lx *lexer) codeToken() error {
	line, col := lx.line, lx.col
	c := lx.peek(0)

	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == '_' || unicode.IsLetter(r) {
		ident := lx.scanIdent()
		if (lx.peek(0) == '\'' || lx.peek(0) == '"') && isStringPrefix(ident) {
			text, err := lx.scanString(ident)
			if err != nil {
				return err
			}
			kind := tkStr
			if strings.ContainsAny(ident, "fF") {
				kind = tkFStr
			}
			lx.emit(kind, text, line, col)
			return nil
		}
		lx.emit(tkName, ident, line, col)
		return nil
	}

	if c >= '0' && c <= '9' || (c == '.' && lx.peek(1) >= '0' && lx.peek(1) <= '9') {
		return lx.scanNumber(line, col)
	}

	if c == '\'' || c == '"' {
		text, err := lx.scanString("")
		if err != nil {
			return err
		}
		lx.emit(tkStr, text, line, col)
		return nil
	}

	for _, op := range [...]string{"**=", "//=", "<<=", ">>=", "..."} {
		if strings.HasPrefix(lx.src[lx.pos:], op) {
			lx.emit(tkOp, lx.take(3), line, col)
			return nil
		}
	}
	for _, op := range [...]string{
		"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->", ":=",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	} {
		if strings.HasPrefix(lx.src[lx.pos:], op) {
			lx.emit(tkOp, lx.take(2), line, col)
			return nil
		}
	}
	if strings.ContainsRune("+-*/%@&|^~<>()[]{},:.;=", rune(c)) {
		switch c {
		case '(', '[', '{':
			lx.depth++
		case ')', ']', '}':
			if lx.depth > 0 {
				lx.depth--
			}
		}
		lx.emit(tkOp, lx.take(1), line, col)
		return nil
	}

	return lx.errorf("unexpected character %q", string(r))
}

func (lx *lexer) scanIdent() string {
	start := lx.pos
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			lx.advance(size)
			continue
		}
		break
	}
	return lx.src[start:lx.pos]
}

func (lx *lexer) scanNumber(line, col int) error {
	start := lx.pos
	isFloat := false
	isImag := false

	if lx.peek(0) == '0' && (lx.peek(1) == 'x' || lx.peek(1) == 'X' ||
		lx.peek(1) == 'o' || lx.peek(1) == 'O' ||
		lx.peek(1) == 'b' || lx.peek(1) == 'B') {
		lx.advance(2)
		for isBaseDigit(lx.peek(0)) || lx.peek(0) == '_' {
			lx.advance(1)
		}
	} else {
		for isDigit(lx.peek(0)) || lx.peek(0) == '_' {
			lx.advance(1)
		}
		if lx.peek(0) == '.' {
			isFloat = true
			lx.advance(1)
			for isDigit(lx.peek(0)) || lx.peek(0) == '_' {
				lx.advance(1)
			}
		}
		if lx.peek(0) == 'e' || lx.peek(0) == 'E' {
			next := lx.peek(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peek(2))) {
				isFloat = true
				lx.advance(2)
				for isDigit(lx.peek(0)) || lx.peek(0) == '_' {
					lx.advance(1)
				}
			}
		}
		if lx.peek(0) == 'j' || lx.peek(0) == 'J' {
			isImag = true
			lx.advance(1)
		}
	}

	text := lx.src[start:lx.pos]
	if !isFloat && !isImag && len(text) > 1 && text[0] == '0' && !strings.ContainsAny(text, "xXoObB") {
		if strings.ContainsAny(text, "123456789") {
			lx.line, lx.col = line, col
			return lx.errorf("invalid decimal literal %q", text)
		}
	}

	kind := tkInt
	switch {
	case isImag:
		kind = tkImag
	case isFloat:
		kind = tkFloat
	}
	lx.emit(kind, text, line, col)
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isBaseDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// scanString consumes a string literal starting at the quote; prefix has
// already been consumed. The returned text includes prefix and quotes.
func (lx *lexer) scanString(prefix string) (string, error) {
	quote := lx.peek(0)
	long := lx.peek(1) == quote && lx.peek(2) == quote
	qlen := 1
	if long {
		qlen = 3
	}
	lx.advance(qlen)

	start := lx.pos
	for {
		if lx.pos >= len(lx.src) {
			return "", lx.errorf("unterminated string literal")
		}
		c := lx.peek(0)
		if c == '\\' && lx.pos+1 < len(lx.src) {
			lx.advance(2)
			continue
		}
		if c == '\n' && !long {
			return "", lx.errorf("newline in string literal")
		}
		if c == quote {
			if !long {
				break
			}
			if lx.peek(1) == quote && lx.peek(2) == quote {
				break
			}
		}
		_, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		lx.advance(size)
	}
	body := lx.src[start:lx.pos]
	lx.advance(qlen)

	q := strings.Repeat(string(quote), qlen)
	return prefix + q + body + q, nil
}
