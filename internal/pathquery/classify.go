package pathquery

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/treepath/internal/document"
)

// Classify maps a raw step to its typed Step. Forms that are syntactic
// subsets of others are tried first, so filters are recognised before
// scripts and unions and slices before single keys. Every raw step either
// classifies or fails; nothing falls back to a member lookup.
func Classify(raw RawStep, compiler ExpressionCompiler) (Step, error) {
	if compiler == nil {
		compiler = NativeCompiler{}
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return nil, syntaxError(raw.Pos, "empty step")
	}

	if !raw.Bracketed && text == descentText {
		return DescentStep{}, nil
	}

	switch {
	case strings.HasPrefix(text, "?(") && strings.HasSuffix(text, ")"):
		predicate, err := compileExpression(compiler, text[2:len(text)-1], raw.Pos)
		if err != nil {
			return nil, err
		}
		return FilterStep{Predicate: predicate}, nil
	case strings.HasPrefix(text, "?") || strings.HasPrefix(text, "^"):
		if hasTopLevel(text, ':') {
			return nil, fmt.Errorf("%w: directional slice %q at position %d", ErrNotSupported, text, raw.Pos)
		}
		return nil, syntaxError(raw.Pos, "invalid step %q", text)
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")"):
		script, err := compileExpression(compiler, text[1:len(text)-1], raw.Pos)
		if err != nil {
			return nil, err
		}
		return ScriptStep{Script: script}, nil
	case text[0] == '/' || text[0] == '\\':
		return classifySort(text, raw.Pos, compiler)
	case text == "*":
		return WildcardStep{}, nil
	case hasTopLevel(text, ','):
		return classifyUnion(text, raw.Pos)
	case hasTopLevel(text, ':'):
		slice, err := parseSlice(text, raw.Pos)
		if err != nil {
			return nil, err
		}
		return SliceStep{Slice: slice}, nil
	}

	key, err := parseKey(text, raw.Pos)
	if err != nil {
		return nil, err
	}
	return MemberStep{Key: key}, nil
}

func compileExpression(compiler ExpressionCompiler, source string, pos int) (Expression, error) {
	if strings.TrimSpace(source) == "" {
		return nil, syntaxError(pos, "empty expression")
	}
	e, err := compiler.Compile(strings.TrimSpace(source))
	if err != nil {
		return nil, fmt.Errorf("%w: expression %q at position %d: %w", ErrSyntax, source, pos, err)
	}
	return e, nil
}

func classifySort(text string, pos int, compiler ExpressionCompiler) (Step, error) {
	parts := splitTopLevel(text, ',')
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || (part[0] != '/' && part[0] != '\\') {
			return nil, syntaxError(pos, "sort directive %q must start with '/' or '\\'", part)
		}
		e, err := compileExpression(compiler, part[1:], pos)
		if err != nil {
			return nil, err
		}
		keys = append(keys, SortKey{Expr: e, Descending: part[0] == '\\'})
	}
	return SortStep{Keys: keys}, nil
}

func classifyUnion(text string, pos int) (Step, error) {
	parts := splitTopLevel(text, ',')
	keys := make([]document.Key, 0, len(parts))
	for _, part := range parts {
		key, err := parseKey(strings.TrimSpace(part), pos)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return UnionStep{Keys: keys}, nil
}

func parseSlice(text string, pos int) (Slice, error) {
	parts := splitTopLevel(text, ':')
	if len(parts) > 3 {
		return Slice{}, syntaxError(pos, "slice %q has more than three parts", text)
	}

	bounds := make([]*int, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Slice{}, syntaxError(pos, "invalid slice bound %q in %q", part, text)
		}
		bounds[i] = &n
	}

	if bounds[2] != nil && *bounds[2] == 0 {
		return Slice{}, syntaxError(pos, "slice step cannot be zero in %q", text)
	}

	return Slice{Start: bounds[0], End: bounds[1], Step: bounds[2]}, nil
}

// parseKey reads a single member key: a quoted name, an integer index or
// a bare name.
func parseKey(text string, pos int) (document.Key, error) {
	if text == "" {
		return document.Key{}, syntaxError(pos, "empty key")
	}

	if text[0] == '\'' || text[0] == '"' {
		name, err := unquote(text)
		if err != nil {
			return document.Key{}, syntaxError(pos, "%s", err)
		}
		return document.Name(name), nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		return document.Index(n), nil
	}

	if !validName(text) {
		return document.Key{}, syntaxError(pos, "invalid member name %q", text)
	}
	return document.Name(text), nil
}

func validName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n'\"[](),:*?/\\")
}

// unquote decodes a single or double quoted literal that spans all of s.
func unquote(s string) (string, error) {
	quote := s[0]
	var b strings.Builder
	b.Grow(len(s))

	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case quote:
			if i != len(s)-1 {
				return "", fmt.Errorf("unexpected text after quoted name in %s", s)
			}
			return b.String(), nil
		case '\\':
			i++
			if i >= len(s) {
				return "", fmt.Errorf("unterminated escape in %s", s)
			}
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				if i+4 >= len(s) {
					return "", fmt.Errorf("short unicode escape in %s", s)
				}
				r, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
				if err != nil {
					return "", fmt.Errorf("invalid unicode escape in %s", s)
				}
				b.WriteRune(rune(r))
				i += 4
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}

	return "", fmt.Errorf("unterminated quoted name %s", s)
}

// hasTopLevel reports whether sep occurs in s outside quotes, brackets
// and parentheses.
func hasTopLevel(s string, sep byte) bool {
	return len(splitTopLevel(s, sep)) > 1
}

// splitTopLevel splits s on sep, ignoring separators inside quotes,
// brackets and parentheses.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)

	for i := 0; i < len(s); i++ {
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

		switch c {
		case '\'', '"':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}
