package pycst

import (
	"fmt"
	"go/constant"
	"go/token"
	"strings"
)

// NumericValue evaluates a numeric literal's spelling to its value. All
// spellings of one value compare equal: radix prefixes in either case,
// underscore groupings and exponent forms are normalized away. Python
// and Go share enough literal syntax that go/constant can do the
// evaluation; only the imaginary suffix differs (j versus i).
func NumericValue(kind, text string) (constant.Value, error) {
	lit := text
	var tk token.Token
	switch kind {
	case "IntLit":
		tk = token.INT
	case "FloatLit":
		tk = token.FLOAT
	case "ImagLit":
		tk = token.IMAG
		if strings.HasSuffix(lit, "j") || strings.HasSuffix(lit, "J") {
			lit = lit[:len(lit)-1] + "i"
		}
	default:
		return nil, fmt.Errorf("pycst: %s is not a numeric literal kind", kind)
	}
	v := constant.MakeFromLiteral(lit, tk, 0)
	if v.Kind() == constant.Unknown {
		return nil, fmt.Errorf("pycst: invalid numeric literal %q", text)
	}
	return v, nil
}

// NumericEqual reports whether two evaluated numeric values are equal.
func NumericEqual(a, b constant.Value) bool {
	return constant.Compare(a, token.EQL, b)
}

// StrValue is the evaluated value of a string literal. Bytes literals
// never compare equal to text literals of the same content.
type StrValue struct {
	Text  string
	Bytes bool
}

type strPrefix struct {
	raw     bool
	bytes   bool
	format  bool
	unicode bool
}

func parseStrPrefix(s string) (strPrefix, int, error) {
	var p strPrefix
	for i := 0; i < len(s) && i < 3; i++ {
		switch s[i] {
		case 'r', 'R':
			if p.raw {
				return p, 0, fmt.Errorf("pycst: invalid string prefix %q", s[:i+1])
			}
			p.raw = true
		case 'b', 'B':
			if p.bytes {
				return p, 0, fmt.Errorf("pycst: invalid string prefix %q", s[:i+1])
			}
			p.bytes = true
		case 'u', 'U':
			if p.unicode {
				return p, 0, fmt.Errorf("pycst: invalid string prefix %q", s[:i+1])
			}
			p.unicode = true
		case 'f', 'F':
			if p.format {
				return p, 0, fmt.Errorf("pycst: invalid string prefix %q", s[:i+1])
			}
			p.format = true
		case '\'', '"':
			return p, i, nil
		default:
			return p, 0, fmt.Errorf("pycst: invalid string prefix %q", s[:i+1])
		}
	}
	return p, 0, fmt.Errorf("pycst: missing quote in string literal %q", s)
}

func splitQuotes(s string) (quote, body string, err error) {
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, q) {
			if len(s) < 2*len(q) || !strings.HasSuffix(s[len(q):], q) {
				return "", "", fmt.Errorf("pycst: unterminated string literal %q", s)
			}
			return q, s[len(q) : len(s)-len(q)], nil
		}
	}
	return "", "", fmt.Errorf("pycst: missing quote in string literal %q", s)
}

// StringValue evaluates a single string literal token (prefix, quotes and
// escapes included) to its value. The f prefix is rejected here; f-strings
// are evaluated per segment.
func StringValue(text string) (StrValue, error) {
	p, qi, err := parseStrPrefix(text)
	if err != nil {
		return StrValue{}, err
	}
	if p.format {
		return StrValue{}, fmt.Errorf("pycst: %q is a formatted string, not a plain literal", text)
	}
	_, body, err := splitQuotes(text[qi:])
	if err != nil {
		return StrValue{}, err
	}
	if p.raw {
		return StrValue{Text: body, Bytes: p.bytes}, nil
	}
	decoded, err := decodeEscapes(body, p.bytes)
	if err != nil {
		return StrValue{}, err
	}
	return StrValue{Text: decoded, Bytes: p.bytes}, nil
}

// FStringPrefix describes the opening token of an f-string: whether its
// text runs are raw, and where the quote starts.
func FStringPrefix(open string) (raw bool, err error) {
	p, _, err := parseStrPrefix(open)
	if err != nil {
		return false, err
	}
	if !p.format {
		return false, fmt.Errorf("pycst: %q does not open a formatted string", open)
	}
	return p.raw, nil
}

// DecodeFStringText evaluates one literal text run of an f-string:
// escape sequences per the opening token's rawness, then doubled braces
// collapse to single braces.
func DecodeFStringText(open, text string) (string, error) {
	raw, err := FStringPrefix(open)
	if err != nil {
		return "", err
	}
	out := text
	if !raw {
		out, err = decodeEscapes(out, false)
		if err != nil {
			return "", err
		}
	}
	out = strings.ReplaceAll(out, "{{", "{")
	out = strings.ReplaceAll(out, "}}", "}")
	return out, nil
}

func decodeEscapes(s string, bytesLit bool) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("pycst: trailing backslash in string body")
		}
		e := s[i+1]
		i += 2
		switch e {
		case '\n':
			// escaped newline joins lines
		case '\\':
			sb.WriteByte('\\')
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(e - '0')
			for k := 0; k < 2 && i < len(s) && s[i] >= '0' && s[i] <= '7'; k++ {
				v = v*8 + int(s[i]-'0')
				i++
			}
			if bytesLit {
				sb.WriteByte(byte(v))
			} else {
				sb.WriteRune(rune(v))
			}
		case 'x':
			v, n, err := hexVal(s[i:], 2)
			if err != nil {
				return "", err
			}
			if bytesLit {
				sb.WriteByte(byte(v))
			} else {
				sb.WriteRune(rune(v))
			}
			i += n
		case 'u', 'U':
			if bytesLit {
				sb.WriteByte('\\')
				sb.WriteByte(e)
				break
			}
			width := 4
			if e == 'U' {
				width = 8
			}
			v, n, err := hexVal(s[i:], width)
			if err != nil {
				return "", err
			}
			sb.WriteRune(rune(v))
			i += n
		default:
			// Python keeps unknown escapes verbatim, \N{...} included.
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}

func hexVal(s string, width int) (int, int, error) {
	if len(s) < width {
		return 0, 0, fmt.Errorf("pycst: truncated hex escape")
	}
	v := 0
	for i := 0; i < width; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v = v*16 + int(c-'0')
		case c >= 'a' && c <= 'f':
			v = v*16 + int(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v*16 + int(c-'A'+10)
		default:
			return 0, 0, fmt.Errorf("pycst: invalid hex escape")
		}
	}
	return v, width, nil
}

// IsBytesLiteral reports whether a string literal token has a bytes
// prefix.
func IsBytesLiteral(text string) bool {
	p, _, err := parseStrPrefix(text)
	return err == nil && p.bytes
}
