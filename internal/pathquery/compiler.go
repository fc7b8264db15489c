package pathquery

import (
	"github.com/jacoelho/treepath/internal/expr"
)

// Expression is a compiled filter, script or sort key. Evaluate binds @ to
// current and $ to root. Implementations must be safe for concurrent use.
type Expression interface {
	Evaluate(current, root any) (any, error)
	String() string
}

// RootBinder is implemented by expressions that prepare the root once per
// evaluation. The returned Expression evaluates against the bound root and
// is dropped when the evaluation ends. Implementations must be comparable.
type RootBinder interface {
	BindRoot(root any) Expression
}

// ExpressionCompiler turns the source text of a sub-expression into an
// Expression.
type ExpressionCompiler interface {
	Compile(source string) (Expression, error)
}

// ExpressionCompilerFunc adapts a function to ExpressionCompiler.
type ExpressionCompilerFunc func(source string) (Expression, error)

func (f ExpressionCompilerFunc) Compile(source string) (Expression, error) {
	return f(source)
}

// NativeCompiler compiles sub-expressions with the built-in expression
// language of package expr.
type NativeCompiler struct{}

func (NativeCompiler) Compile(source string) (Expression, error) {
	program, err := expr.Compile(source)
	if err != nil {
		return nil, err
	}
	return program, nil
}

// truthy reports whether a filter result selects its candidate. Results
// of other compilers are judged with the same rules as native ones.
func truthy(v any) bool {
	return expr.Truthy(v)
}
