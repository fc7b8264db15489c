package expr

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jacoelho/treepath/internal/number"
)

type node interface{}

type literalNode struct {
	value any
}

// currentNode is the candidate being tested, bound to @.
type currentNode struct{}

// rootNode is the whole document, bound to $.
type rootNode struct{}

type memberNode struct {
	target node
	name   string
}

type indexNode struct {
	target node
	index  node
}

type unaryNode struct {
	op    tokenType
	right node
}

type binaryNode struct {
	op    tokenType
	left  node
	right node
}

type matchNode struct {
	target node
	re     *regexp.Regexp
	negate bool
}

type parserState struct {
	tokens []token
	pos    int
}

func parse(input string) (node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	state := parserState{tokens: tokens}
	if state.current().typ == tokenEOF {
		return nil, expressionError("expression is empty")
	}

	root, err := state.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := state.current(); tok.typ != tokenEOF {
		return nil, expressionError("unexpected %s at position %d", tok.typ, tok.pos)
	}

	return root, nil
}

func (p *parserState) parseExpression() (node, error) {
	return p.parseOr()
}

// parseBinary parses a left-associative chain of operators from ops,
// with operands produced by next.
func (p *parserState) parseBinary(next func() (node, error), ops ...tokenType) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.currentIs(ops...) {
		op := p.advance().typ
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}

	return left, nil
}

func (p *parserState) parseOr() (node, error) {
	return p.parseBinary(p.parseAnd, tokenOr)
}

func (p *parserState) parseAnd() (node, error) {
	return p.parseBinary(p.parseEquality, tokenAnd)
}

func (p *parserState) parseEquality() (node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().typ {
		case tokenEqual, tokenNotEqual:
			op := p.advance().typ
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = binaryNode{op: op, left: left, right: right}
		case tokenMatch, tokenNotMatch:
			opTok := p.advance()
			re, err := p.parsePattern(opTok)
			if err != nil {
				return nil, err
			}
			left = matchNode{target: left, re: re, negate: opTok.typ == tokenNotMatch}
		default:
			return left, nil
		}
	}
}

// parsePattern compiles the literal operand of =~ and !~. Patterns are
// fixed at compile time so evaluation never compiles regular expressions.
func (p *parserState) parsePattern(op token) (*regexp.Regexp, error) {
	tok := p.advance()

	var pattern, flags string
	switch tok.typ {
	case tokenRegex:
		pattern, flags = tok.literal, tok.flags
	case tokenString:
		pattern = tok.literal
	default:
		return nil, expressionError("operator %s at position %d requires a regex or string literal", op.typ, op.pos)
	}

	for _, f := range flags {
		if !strings.ContainsRune("ims", f) {
			return nil, expressionError("unsupported regex flag %q at position %d", f, tok.pos)
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, expressionError("invalid regex at position %d: %v", tok.pos, err)
	}
	return re, nil
}

func (p *parserState) parseRelational() (node, error) {
	return p.parseBinary(p.parseAdditive, tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual)
}

func (p *parserState) parseAdditive() (node, error) {
	return p.parseBinary(p.parseMultiplicative, tokenPlus, tokenMinus)
}

func (p *parserState) parseMultiplicative() (node, error) {
	return p.parseBinary(p.parseUnary, tokenStar, tokenSlash, tokenPercent)
}

func (p *parserState) parseUnary() (node, error) {
	if p.currentIs(tokenNot, tokenMinus) {
		op := p.advance().typ
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, right: right}, nil
	}

	return p.parsePostfix()
}

func (p *parserState) parsePostfix() (node, error) {
	target, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().typ {
		case tokenDot:
			p.advance()
			name := p.advance()
			switch name.typ {
			case tokenIdentifier, tokenTrue, tokenFalse, tokenNull, tokenNumber:
				target = memberNode{target: target, name: name.literal}
			default:
				return nil, expressionError("expected property name after '.' at position %d", name.pos)
			}
		case tokenLBracket:
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if p.current().typ != tokenRBracket {
				return nil, expressionError("missing closing ']' at position %d", p.current().pos)
			}
			p.advance()
			target = indexNode{target: target, index: index}
		default:
			return target, nil
		}
	}
}

func (p *parserState) parsePrimary() (node, error) {
	tok := p.current()
	switch tok.typ {
	case tokenAt:
		p.advance()
		return currentNode{}, nil
	case tokenDollar:
		p.advance()
		return rootNode{}, nil
	case tokenIdentifier:
		return nil, expressionError("unknown identifier %q at position %d, only @ and $ are bound", tok.literal, tok.pos)
	case tokenNumber:
		p.advance()
		value, ok := number.ToDecimal(json.Number(tok.literal))
		if !ok {
			return nil, expressionError("invalid number literal %q at position %d", tok.literal, tok.pos)
		}
		return literalNode{value: value}, nil
	case tokenString:
		p.advance()
		return literalNode{value: tok.literal}, nil
	case tokenTrue:
		p.advance()
		return literalNode{value: true}, nil
	case tokenFalse:
		p.advance()
		return literalNode{value: false}, nil
	case tokenNull:
		p.advance()
		return literalNode{value: nil}, nil
	case tokenLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().typ != tokenRParen {
			return nil, expressionError("missing closing ')' at position %d", p.current().pos)
		}
		p.advance()
		return inner, nil
	case tokenEOF:
		return nil, expressionError("unexpected end of expression")
	default:
		return nil, expressionError("unexpected %s at position %d", tok.typ, tok.pos)
	}
}

func (p *parserState) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) currentIs(types ...tokenType) bool {
	typ := p.current().typ
	for _, t := range types {
		if typ == t {
			return true
		}
	}
	return false
}

func (p *parserState) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
