package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdentifier
	tokenNumber
	tokenString
	tokenRegex
	tokenTrue
	tokenFalse
	tokenNull
	tokenAt
	tokenDollar
	tokenDot
	tokenLBracket
	tokenRBracket
	tokenLParen
	tokenRParen
	tokenEqual
	tokenNotEqual
	tokenLess
	tokenLessEqual
	tokenGreater
	tokenGreaterEqual
	tokenMatch
	tokenNotMatch
	tokenAnd
	tokenOr
	tokenNot
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPercent
)

var tokenNames = [...]string{
	tokenEOF:          "end of expression",
	tokenIdentifier:   "identifier",
	tokenNumber:       "number",
	tokenString:       "string",
	tokenRegex:        "regex",
	tokenTrue:         "true",
	tokenFalse:        "false",
	tokenNull:         "null",
	tokenAt:           "@",
	tokenDollar:       "$",
	tokenDot:          ".",
	tokenLBracket:     "[",
	tokenRBracket:     "]",
	tokenLParen:       "(",
	tokenRParen:       ")",
	tokenEqual:        "==",
	tokenNotEqual:     "!=",
	tokenLess:         "<",
	tokenLessEqual:    "<=",
	tokenGreater:      ">",
	tokenGreaterEqual: ">=",
	tokenMatch:        "=~",
	tokenNotMatch:     "!~",
	tokenAnd:          "&&",
	tokenOr:           "||",
	tokenNot:          "!",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenPercent:      "%",
}

func (t tokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

type token struct {
	typ     tokenType
	literal string
	flags   string // regex flags
	pos     int
}

// operators lists multi-character operators before their prefixes.
var operators = []struct {
	text string
	typ  tokenType
}{
	{"===", tokenEqual},
	{"!==", tokenNotEqual},
	{"==", tokenEqual},
	{"!=", tokenNotEqual},
	{"=~", tokenMatch},
	{"!~", tokenNotMatch},
	{"<=", tokenLessEqual},
	{">=", tokenGreaterEqual},
	{"&&", tokenAnd},
	{"||", tokenOr},
	{"<", tokenLess},
	{">", tokenGreater},
	{"!", tokenNot},
	{"+", tokenPlus},
	{"-", tokenMinus},
	{"*", tokenStar},
	{"/", tokenSlash},
	{"%", tokenPercent},
	{"@", tokenAt},
	{"$", tokenDollar},
	{".", tokenDot},
	{"[", tokenLBracket},
	{"]", tokenRBracket},
	{"(", tokenLParen},
	{")", tokenRParen},
}

func lex(input string) ([]token, error) {
	tokens := make([]token, 0, len(input)/2)
	pos := 0

	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}

		if isIdentifierStart(r) {
			start := pos
			pos += size
			for pos < len(input) {
				next, nextSize := utf8.DecodeRuneInString(input[pos:])
				if !isIdentifierPart(next) {
					break
				}
				pos += nextSize
			}
			literal := input[start:pos]
			switch literal {
			case "true":
				tokens = append(tokens, token{typ: tokenTrue, literal: literal, pos: start})
			case "false":
				tokens = append(tokens, token{typ: tokenFalse, literal: literal, pos: start})
			case "null":
				tokens = append(tokens, token{typ: tokenNull, literal: literal, pos: start})
			default:
				tokens = append(tokens, token{typ: tokenIdentifier, literal: literal, pos: start})
			}
			continue
		}

		if input[pos] >= '0' && input[pos] <= '9' {
			numberToken, nextPos, err := lexNumber(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, numberToken)
			pos = nextPos
			continue
		}

		if input[pos] == '\'' || input[pos] == '"' {
			literal, nextPos, err := lexString(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, literal: literal, pos: pos})
			pos = nextPos
			continue
		}

		matched := false
		for _, op := range operators {
			if !strings.HasPrefix(input[pos:], op.text) {
				continue
			}
			tokens = append(tokens, token{typ: op.typ, literal: op.text, pos: pos})
			pos += len(op.text)
			matched = true

			if op.typ == tokenMatch || op.typ == tokenNotMatch {
				regexToken, nextPos, ok, err := lexRegex(input, pos)
				if err != nil {
					return nil, err
				}
				if ok {
					tokens = append(tokens, regexToken)
					pos = nextPos
				}
			}
			break
		}
		if !matched {
			return nil, expressionError("unexpected character %q at position %d", r, pos)
		}
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func lexNumber(input string, start int) (token, int, error) {
	pos := start
	for pos < len(input) && isDigit(input[pos]) {
		pos++
	}

	if pos < len(input) && input[pos] == '.' && pos+1 < len(input) && isDigit(input[pos+1]) {
		pos++
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
	}

	if pos < len(input) && (input[pos] == 'e' || input[pos] == 'E') {
		expPos := pos + 1
		if expPos < len(input) && (input[expPos] == '+' || input[expPos] == '-') {
			expPos++
		}
		if expPos >= len(input) || !isDigit(input[expPos]) {
			return token{}, 0, expressionError("invalid exponent at position %d", start)
		}
		pos = expPos
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
	}

	literal := input[start:pos]
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return token{}, 0, expressionError("invalid number %q at position %d", literal, start)
	}

	return token{typ: tokenNumber, literal: literal, pos: start}, pos, nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder

	for pos := start + 1; pos < len(input); pos++ {
		ch := input[pos]
		if ch == quote {
			return b.String(), pos + 1, nil
		}

		if ch == '\\' {
			pos++
			if pos >= len(input) {
				return "", 0, expressionError("unterminated escape sequence at position %d", start)
			}
			escaped := input[pos]
			switch escaped {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if pos+4 >= len(input) {
					return "", 0, expressionError("invalid unicode escape at position %d", pos-1)
				}
				code, err := strconv.ParseUint(input[pos+1:pos+5], 16, 32)
				if err != nil {
					return "", 0, expressionError("invalid unicode escape at position %d", pos-1)
				}
				b.WriteRune(rune(code))
				pos += 4
			default:
				b.WriteByte(escaped)
			}
			continue
		}

		if ch == '\n' || ch == '\r' {
			return "", 0, expressionError("unterminated string at position %d", start)
		}

		b.WriteByte(ch)
	}

	return "", 0, expressionError("unterminated string at position %d", start)
}

// lexRegex reads a /pattern/flags literal following a match operator.
// ok is false when the operand is not a regex literal.
func lexRegex(input string, start int) (token, int, bool, error) {
	pos := start
	for pos < len(input) && (input[pos] == ' ' || input[pos] == '\t') {
		pos++
	}
	if pos >= len(input) || input[pos] != '/' {
		return token{}, start, false, nil
	}

	regexStart := pos
	var b strings.Builder
	for pos++; pos < len(input); pos++ {
		ch := input[pos]
		if ch == '\\' && pos+1 < len(input) && input[pos+1] == '/' {
			b.WriteByte('/')
			pos++
			continue
		}
		if ch == '/' {
			pos++
			flagStart := pos
			for pos < len(input) && unicode.IsLetter(rune(input[pos])) {
				pos++
			}
			return token{typ: tokenRegex, literal: b.String(), flags: input[flagStart:pos], pos: regexStart}, pos, true, nil
		}
		b.WriteByte(ch)
	}

	return token{}, 0, false, expressionError("unterminated regex literal at position %d", regexStart)
}
