package pipeline

// Outcome is the tagged result of one unit of work: either a value or a
// failure reason. A failed outcome always carries a non-nil error so the
// reason survives long enough to be logged, even though it is dropped from
// the successful-table output.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Succeed wraps a value in a successful outcome.
func Succeed[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fail wraps a failure reason in a failed outcome.
func Fail[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// OK reports whether the unit of work succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}
