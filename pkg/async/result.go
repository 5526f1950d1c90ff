package async

type Result[T any] struct {
	Value T
	Err   error
}

func NewResult[T any](value T, errs ...error) Result[T] {
	var err error
	if len(errs) > 0 {
		err = errs[0]
	}
	return Result[T]{Value: value, Err: err}
}

func (r Result[T]) Unpack() (T, error) {
	return r.Value, r.Err
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Values returns the values of successful results in their original order.
func Values[T any](results []Result[T]) []T {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			values = append(values, r.Value)
		}
	}
	return values
}

// FirstErr returns the first error in results, if any.
func FirstErr[T any](results []Result[T]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
