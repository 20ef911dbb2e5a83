package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionFailed = errors.New("failed to submit order, please try again later")
)

// ValidationError lists the required delivery fields left blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// SubmissionError wraps the order-service failure. Its message is the
// generic retry-later text; the cause is kept for logs.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return ErrSubmissionFailed.Error()
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
