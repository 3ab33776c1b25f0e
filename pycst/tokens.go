package pycst

// Tok is a single source token. Text is the token's exact spelling. Lead
// holds every source byte between the previous token and this one:
// whitespace, newlines, comments and backslash continuations. Printing a
// tree concatenates Lead+Text over all tokens in syntax order, so an
// untouched tree reproduces its source byte for byte.
type Tok struct {
	Lead string
	Text string
}

func tok(text string) Tok { return Tok{Text: text} }

// ParenPair is one matched pair of explicit parentheses around an
// expression. The opening token carries any leading trivia.
type ParenPair struct {
	L Tok
	R Tok
}

// Parens is the ordered list of explicit paren pairs wrapping an
// expression, outermost first. It is embedded by every expression node;
// matching never inspects it, printing emits the L tokens before the node
// and the R tokens after it in reverse order.
type Parens []ParenPair

// HasParens reports whether the expression carries at least one explicit
// paren pair.
func (p Parens) HasParens() bool { return len(p) > 0 }
