package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidExpression indicates expression parsing failures.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrEvaluation indicates an expression that parsed but could not be
	// evaluated against the supplied values.
	ErrEvaluation = errors.New("expression evaluation failed")
)

func expressionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpression, fmt.Sprintf(format, args...))
}

func evaluationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEvaluation, fmt.Sprintf(format, args...))
}
