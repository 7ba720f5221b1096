package intercept

import (
	"errors"
	"fmt"
)

var (
	ErrDescriptorMissing = errors.New("intercept: no descriptor for operation")
	ErrQueryExecution    = errors.New("intercept: query execution failed")
	ErrTargetMismatch    = errors.New("intercept: descriptor target does not match")
	ErrNoExecutor        = errors.New("intercept: no executor configured")
)

// QueryError wraps a failure of the query executor. The executor's own error
// is kept as the cause so callers can still match it.
type QueryError struct {
	Operation string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrQueryExecution, e.Operation, e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQueryExecution, e.Err}
}

func missing(op string) error {
	return fmt.Errorf("%w: %q", ErrDescriptorMissing, op)
}
