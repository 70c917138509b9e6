// Package result carries either a value or a typed failure back from the application layer.
package result

import (
	stderrors "errors"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var errMissing = stderrors.New("failure without error")

// Result holds the outcome of a command or query
type Result[T any] struct {
	value T
	err   *apperrors.AppError
}

// Success wraps a value
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps an error. Untyped errors become internal failures.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.Internal(errMissing)
	}
	return Result[T]{err: apperrors.From(err)}
}

// From builds a Result from a conventional (value, error) pair
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Value returns the wrapped value; zero on failure
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the failure, nil on success
func (r Result[T]) Error() *apperrors.AppError {
	return r.err
}

// Unwrap returns the value and the failure as a plain error
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}
