package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every subsystem. Handlers match with errors.Is
// and translate to tool-level failures; evaluator errors during batch or
// recursive dispatch are recovered locally instead of propagated.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDepthExceeded = errors.New("recursion depth exceeded")
	ErrEvaluator     = errors.New("evaluator failure")
)

// NotFoundf wraps ErrNotFound with a formatted description.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidInputf wraps ErrInvalidInput with a formatted description.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsDepthExceeded reports whether err wraps ErrDepthExceeded.
func IsDepthExceeded(err error) bool { return errors.Is(err, ErrDepthExceeded) }

// IsEvaluatorFailure reports whether err wraps ErrEvaluator.
func IsEvaluatorFailure(err error) bool { return errors.Is(err, ErrEvaluator) }
