package async

import (
	"context"
	"sync/atomic"
)

// JobHandle is the completion side of work started with Job. The outcome is
// delivered exactly once; Wait may be called from any number of goroutines.
type JobHandle[T any] struct {
	cancel func()
	done   chan struct{}
	result Result[T]
	err    atomic.Pointer[error]
}

// Job runs job in a new goroutine with a context derived from parent.
func Job[T any](parent context.Context, job func(ctx context.Context) (T, error)) *JobHandle[T] {
	ctx, cancel := context.WithCancel(parent)

	handle := &JobHandle[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()

		res, err := job(ctx)
		handle.finish(res, err)
	}()

	return handle
}

// Then returns a handle completing with fn of the value of h. An error of h
// is passed through and fn is not called.
func Then[T any, R any](h *JobHandle[T], fn func(T) R) *JobHandle[R] {
	select {
	case <-h.done:
		value, err := h.Wait()
		if err != nil {
			var zero R
			return Done(zero, err)
		}
		return Done(fn(value), nil)
	default:
	}

	return Job(context.Background(), func(context.Context) (R, error) {
		value, err := h.Wait()
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(value), nil
	})
}

// Done returns an already completed handle.
func Done[T any](value T, err error) *JobHandle[T] {
	handle := &JobHandle[T]{
		cancel: func() {},
		done:   make(chan struct{}),
	}
	handle.finish(value, err)
	return handle
}

func (j *JobHandle[T]) finish(value T, err error) {
	j.result = NewResult(value, err)
	j.err.Store(&err)
	close(j.done)
}

func (j *JobHandle[T]) Stop() {
	j.cancel()
}

func (j *JobHandle[T]) Wait() (T, error) {
	<-j.done
	return j.result.Unpack()
}

// Finished is closed when the job has completed.
func (j *JobHandle[T]) Finished() <-chan struct{} {
	return j.done
}

// Error returns the job error, or nil while the job is still running.
func (j *JobHandle[T]) Error() error {
	var err = j.err.Load()
	if err == nil {
		return nil
	}
	return *err
}
