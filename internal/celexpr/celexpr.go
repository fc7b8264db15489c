// Package celexpr evaluates path query filters, scripts and sort keys with
// the Common Expression Language instead of the built-in expression
// language.
//
// Queries keep using @ for the current node and $ for the root. Both are
// rewritten to the CEL variables node and root before compilation, so
//
//	$..book[?(@.price > 10 && has(@.isbn))]
//
// is evaluated as the CEL program node.price > 10 && has(node.isbn).
package celexpr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/jacoelho/treepath/internal/document"
	"github.com/jacoelho/treepath/internal/pathquery"
)

const (
	nodeVar = "node"
	rootVar = "root"
)

var (
	ErrInvalidExpression = errors.New("celexpr: invalid expression")
	ErrEvaluation        = errors.New("celexpr: evaluation failed")
)

// Compiler compiles expressions into CEL programs. It implements
// pathquery.ExpressionCompiler and is safe for concurrent use.
type Compiler struct {
	env *cel.Env
}

func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable(nodeVar, cel.DynType),
		cel.Variable(rootVar, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("celexpr: create environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

func (c *Compiler) Compile(source string) (pathquery.Expression, error) {
	rewritten, usesRoot := bindVariables(source)

	ast, issues := c.env.Compile(rewritten)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, source, issues.Err())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, source, err)
	}

	return &expression{source: source, program: program, usesRoot: usesRoot}, nil
}

type expression struct {
	source   string
	program  cel.Program
	usesRoot bool
}

// Evaluate converts the root on every call. Walkers bind the root once per
// evaluation through BindRoot instead.
func (e *expression) Evaluate(current, root any) (any, error) {
	var plainRoot any
	if e.usesRoot {
		plainRoot = document.Plain(root)
	}
	return e.eval(current, plainRoot)
}

// BindRoot returns e with the root converted once. The bound expression
// belongs to a single evaluation and is not kept by e.
func (e *expression) BindRoot(root any) pathquery.Expression {
	if !e.usesRoot {
		return e
	}
	return &boundExpression{expression: e, root: document.Plain(root)}
}

func (e *expression) String() string {
	return e.source
}

func (e *expression) eval(current, plainRoot any) (any, error) {
	out, _, err := e.program.Eval(map[string]any{
		nodeVar: document.Plain(current),
		rootVar: plainRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrEvaluation, e.source, err)
	}
	if out.Type() == cel.NullType {
		return nil, nil
	}
	return out.Value(), nil
}

type boundExpression struct {
	*expression
	root any
}

func (b *boundExpression) Evaluate(current, _ any) (any, error) {
	return b.eval(current, b.root)
}

// bindVariables replaces @ and $ outside string literals with the CEL
// variable names and reports whether $ was used.
func bindVariables(source string) (string, bool) {
	var (
		b        strings.Builder
		quote    byte
		usesRoot bool
	)
	b.Grow(len(source) + 8)

	for i := 0; i < len(source); i++ {
		c := source[i]
		if quote != 0 {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(source) {
					i++
					b.WriteByte(source[i])
				}
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			b.WriteByte(c)
		case '@':
			b.WriteString(nodeVar)
		case '$':
			usesRoot = true
			b.WriteString(rootVar)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), usesRoot
}
