package pathquery

import (
	"strings"

	"github.com/jacoelho/treepath/internal/stack"
)

// RawStep is one location step as written in the query, before
// classification. Dot and bracket notation produce the same form: Text is
// the member name after '.', or the trimmed content between '[' and ']'.
type RawStep struct {
	Text      string
	Bracketed bool
	Pos       int // byte offset of the step in the query
}

const descentText = ".."

// Normalize splits a query into raw steps. An optional leading '$' is
// dropped, '..' becomes a step of its own, and quoted literals and nested
// brackets or parentheses inside a bracket step are kept intact.
func Normalize(query string) ([]RawStep, error) {
	lead := len(query) - len(strings.TrimLeft(query, " \t\r\n"))
	s := strings.TrimSpace(query)
	if s == "" {
		return nil, syntaxError(0, "query is empty")
	}

	i := 0
	if s[0] == '$' {
		i = 1
	}

	var steps []RawStep
	if i < len(s) && s[i] != '.' && s[i] != '[' {
		name, next := scanName(s, i)
		if name == "" {
			return nil, syntaxError(lead+i, "unexpected %q", s[i])
		}
		steps = append(steps, RawStep{Text: name, Pos: lead + i})
		i = next
	}

	for i < len(s) {
		switch s[i] {
		case '.':
			if i+1 < len(s) && s[i+1] == '.' {
				steps = append(steps, RawStep{Text: descentText, Pos: lead + i})
				i += 2
				if i >= len(s) {
					return nil, syntaxError(lead+i, "query cannot end with '..'")
				}
				if s[i] == '.' {
					return nil, syntaxError(lead+i, "unexpected '.' after '..'")
				}
				if s[i] == '[' {
					continue
				}
			} else {
				i++
				if i >= len(s) {
					return nil, syntaxError(lead+i, "query cannot end with '.'")
				}
			}

			name, next := scanName(s, i)
			if name == "" {
				return nil, syntaxError(lead+i, "expected member name, found %q", s[i])
			}
			steps = append(steps, RawStep{Text: name, Pos: lead + i})
			i = next
		case '[':
			end, err := matchBracket(s, i, lead)
			if err != nil {
				return nil, err
			}
			inner := strings.TrimSpace(s[i+1 : end])
			if inner == "" {
				return nil, syntaxError(lead+i, "empty brackets")
			}
			steps = append(steps, RawStep{Text: inner, Bracketed: true, Pos: lead + i})
			i = end + 1
		default:
			return nil, syntaxError(lead+i, "unexpected %q in %q", s[i], fragment(s, i))
		}
	}

	return steps, nil
}

// scanName reads a dot-notation member name.
func scanName(s string, i int) (string, int) {
	start := i
	for i < len(s) && !strings.ContainsRune(".[]()", rune(s[i])) {
		i++
	}
	return s[start:i], i
}

// matchBracket returns the index of the ']' closing the '[' at start.
// Quotes (with backslash escapes), regex literals following =~ or !~,
// parentheses and nested brackets are tracked so that delimiters inside
// them do not end the step.
func matchBracket(s string, start, lead int) (int, error) {
	closers := stack.NewWithCapacity[byte](4)
	var (
		quote      byte
		regexStart = -1
		afterMatch bool
	)

	for i := start; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		if regexStart >= 0 {
			switch c {
			case '\\':
				i++
			case '/':
				regexStart = -1
			}
			continue
		}

		if afterMatch {
			switch c {
			case ' ', '\t', '\r', '\n':
				continue
			case '/':
				afterMatch = false
				regexStart = i
				continue
			}
			afterMatch = false
		}

		switch c {
		case '\'', '"':
			quote = c
		case '~':
			afterMatch = i > start && (s[i-1] == '=' || s[i-1] == '!')
		case '[':
			closers.Push(']')
		case '(':
			closers.Push(')')
		case ']', ')':
			want, ok := closers.Pop()
			if !ok || want != c {
				return 0, syntaxError(lead+i, "unbalanced %q in %q", c, fragment(s, start))
			}
			if closers.IsEmpty() {
				return i, nil
			}
		}
	}

	if quote != 0 {
		return 0, syntaxError(lead+start, "unterminated string in %q", fragment(s, start))
	}
	if regexStart >= 0 {
		return 0, syntaxError(lead+regexStart, "unterminated regex literal in %q", fragment(s, start))
	}
	return 0, syntaxError(lead+start, "unbalanced '[' in %q", fragment(s, start))
}

// fragment returns a short excerpt of s starting at i for error messages.
func fragment(s string, i int) string {
	const maxFragment = 32
	if len(s)-i > maxFragment {
		return s[i:i+maxFragment] + "..."
	}
	return s[i:]
}
