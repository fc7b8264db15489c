package pathquery

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// ResultType selects the shape of an evaluation result.
type ResultType uint8

const (
	ResultValue ResultType = iota
	ResultPath
	ResultBoth
)

func (r ResultType) String() string {
	switch r {
	case ResultPath:
		return "PATH"
	case ResultBoth:
		return "BOTH"
	default:
		return "VALUE"
	}
}

// ParseResultType accepts VALUE, PATH and BOTH in any case.
func ParseResultType(s string) (ResultType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "VALUE":
		return ResultValue, nil
	case "PATH":
		return ResultPath, nil
	case "BOTH":
		return ResultBoth, nil
	default:
		return 0, fmt.Errorf("%w: unknown result type %q", ErrUsage, s)
	}
}

// EvalType selects what filters and scripts are evaluated against.
type EvalType uint8

const (
	// EvalValue walks filters over the children of each match and binds
	// scripts to the document root.
	EvalValue EvalType = iota
	// EvalResult evaluates filters and scripts relative to the matches
	// already selected instead of descending again.
	EvalResult
)

func (e EvalType) String() string {
	if e == EvalResult {
		return "RESULT"
	}
	return "VALUE"
}

// ParseEvalType accepts VALUE and RESULT in any case.
func ParseEvalType(s string) (EvalType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "VALUE":
		return EvalValue, nil
	case "RESULT":
		return EvalResult, nil
	default:
		return 0, fmt.Errorf("%w: unknown eval type %q", ErrUsage, s)
	}
}

type config struct {
	resultType ResultType
	evalType   EvalType
	compiler   ExpressionCompiler
	logger     *slog.Logger
	collation  *language.Tag
	nodeLimit  int
}

// Option configures compilation or evaluation.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		compiler: NativeCompiler{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default().With("component", "pathquery")
	}
	return cfg
}

func (c config) validate() error {
	if c.resultType == ResultPath && c.evalType == EvalResult {
		return fmt.Errorf("%w: result type %s cannot be combined with eval type %s", ErrUsage, c.resultType, c.evalType)
	}
	if c.nodeLimit < 0 {
		return fmt.Errorf("%w: node limit must not be negative, got %d", ErrUsage, c.nodeLimit)
	}
	return nil
}

// WithResultType sets the result shape. The default is ResultValue.
func WithResultType(t ResultType) Option {
	return func(c *config) {
		c.resultType = t
	}
}

// WithEvalType sets the evaluation mode. The default is EvalValue.
func WithEvalType(t EvalType) Option {
	return func(c *config) {
		c.evalType = t
	}
}

// WithCompiler replaces the expression compiler used for filter, script
// and sort expressions. It only has an effect at compile time.
func WithCompiler(compiler ExpressionCompiler) Option {
	return func(c *config) {
		if compiler != nil {
			c.compiler = compiler
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCollation makes sort steps compare strings using the collation
// rules of tag instead of byte order.
func WithCollation(tag language.Tag) Option {
	return func(c *config) {
		c.collation = &tag
	}
}

// WithNodeLimit bounds the number of matches a single evaluation may
// produce across all steps. Zero means unbounded.
func WithNodeLimit(n int) Option {
	return func(c *config) {
		c.nodeLimit = n
	}
}
