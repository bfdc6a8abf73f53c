package async

import (
	"context"
	"time"
)

// Future represents the pending result of a function started with Run.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Await blocks until the function completes and returns its result and error.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for completion up to the given timeout.
// Returns ErrTimeout if the function has not completed in time.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done reports whether the function has completed, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Run executes fn in its own goroutine and returns a Future for its result.
// A pre-cancelled context short-circuits without invoking fn.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}
