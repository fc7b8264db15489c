package pathquery

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates a malformed query detected before evaluation.
	ErrSyntax = errors.New("pathquery: syntax error")

	// ErrNotSupported indicates syntax that is reserved but not implemented.
	ErrNotSupported = errors.New("pathquery: not supported")

	// ErrUsage indicates an invalid combination of evaluation options.
	ErrUsage = errors.New("pathquery: invalid usage")

	// ErrLimitExceeded indicates evaluation produced more matches than the
	// configured node limit.
	ErrLimitExceeded = errors.New("pathquery: node limit exceeded")
)

func syntaxError(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: %s at position %d", ErrSyntax, fmt.Sprintf(format, args...), pos)
}
