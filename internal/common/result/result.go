// Package result provides the tagged success-or-failure value returned by
// every service operation. Expected failures travel as the Err variant and are
// mapped to a discriminated response union at the API edge; they are never
// raised as transport errors.
package result

type Result[T any] struct {
	value T
	err   error
	ok    bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the success payload; only meaningful when IsOk reports true.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}
