package expr

import (
	"errors"
	"strings"
)

// keywords maps Python spellings to their HCL equivalents. "not" is handled
// separately because it needs a closing parenthesis.
var keywords = map[string]string{
	"and":   "&&",
	"or":    "||",
	"True":  "true",
	"False": "false",
	"None":  "null",
}

var errUnterminatedString = errors.New("unterminated string literal")

// rewriter accumulates the translated source.
// Whitespace is held back so that closing parentheses land right after the
// operand they close.
type rewriter struct {
	out    strings.Builder
	ws     strings.Builder
	dropWS bool
	depth  int
	// nots holds the bracket depth of every open "not" group.
	nots []int
}

func (r *rewriter) space(c byte) {
	if !r.dropWS {
		r.ws.WriteByte(c)
	}
}

func (r *rewriter) emit(s string) {
	r.out.WriteString(r.ws.String())
	r.ws.Reset()
	r.dropWS = false
	r.out.WriteString(s)
}

// closeNots ends the "not" groups opened at the current depth.
func (r *rewriter) closeNots() {
	for len(r.nots) > 0 && r.nots[len(r.nots)-1] == r.depth {
		r.out.WriteByte(')')
		r.nots = r.nots[:len(r.nots)-1]
	}
}

func (r *rewriter) finish() string {
	for range r.nots {
		r.out.WriteByte(')')
	}
	r.nots = nil
	r.out.WriteString(r.ws.String())
	return r.out.String()
}

// rewriteDialect translates the Python-compatible spellings into HCL syntax.
//
// Double-quoted strings are copied verbatim and single-quoted strings become
// double-quoted ones. Keywords are only replaced where they stand as
// identifiers, not after a dot where they name an attribute. "not X" becomes
// "!(X)" with X running up to the next and/or, comma, ternary operator or
// closing bracket at the same depth, which gives "not" the Python precedence
// below comparisons. A minus directly after an identifier is spaced out so
// that HCL does not read "a-1" as one dashed identifier.
func rewriteDialect(src string) (string, error) {
	r := &rewriter{}
	r.out.Grow(len(src) + 8)

	prevDot := false
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.space(c)
			i++
			continue

		case c == '"':
			end, err := scanString(src, i, '"')
			if err != nil {
				return "", err
			}
			r.emit(src[i:end])
			i = end

		case c == '\'':
			end, err := scanString(src, i, '\'')
			if err != nil {
				return "", err
			}
			body := src[i+1 : end-1]
			body = strings.ReplaceAll(body, `\'`, `'`)
			r.emit(`"` + escapeUnescapedQuotes(body) + `"`)
			i = end

		case isDigit(c):
			end := scanNumber(src, i)
			r.emit(src[i:end])
			i = end

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			i = j

			switch {
			case prevDot:
				r.emit(word)
			case word == "not":
				r.emit("!(")
				r.nots = append(r.nots, r.depth)
				r.dropWS = true
			case word == "and" || word == "or":
				r.closeNots()
				r.emit(keywords[word])
			default:
				if repl, ok := keywords[word]; ok {
					r.emit(repl)
				} else {
					r.emit(word)
				}
			}

		case (c == '&' || c == '|') && i+1 < len(src) && src[i+1] == c:
			r.closeNots()
			r.emit(src[i : i+2])
			i += 2

		case c == '(' || c == '[' || c == '{':
			r.emit(string(c))
			r.depth++
			i++

		case c == ')' || c == ']' || c == '}':
			r.closeNots()
			r.depth--
			r.emit(string(c))
			i++

		case c == '?' || c == ':' || c == ',':
			r.closeNots()
			r.emit(string(c))
			i++

		case c == '-' && i > 0 && isIdentPart(src[i-1]):
			r.emit(" - ")
			i++

		default:
			r.emit(string(c))
			i++
		}

		prevDot = c == '.'
	}
	return r.finish(), nil
}

// scanString returns the index just past the closing quote of the string starting at start.
func scanString(src string, start int, quote byte) (int, error) {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, errUnterminatedString
}

// scanNumber returns the index just past the numeric literal starting at start,
// including a fraction and an exponent.
func scanNumber(src string, start int) int {
	i := start
	for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
		i++
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func escapeUnescapedQuotes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == '"' {
			b.WriteString(`\"`)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdentPart follows Python identifiers, so a dash is never part of a name.
func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
