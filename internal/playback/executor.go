package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrExecutorClosed = errors.New("session executor closed")

const executorBacklog = 64

// Future is the result of work scheduled on a session executor.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the work finishes or ctx is done. Abandoning the wait
// does not cancel the work.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

type task struct {
	run  func(ctx context.Context)
	fail func(err error)
}

// Executor runs submitted tasks one at a time on its own goroutine. It is
// the execution context that owns a session's queues and state.
type Executor struct {
	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan task
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewExecutor(parent context.Context) *Executor {
	ctx, cancel := context.WithCancel(parent)
	e := &Executor{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(chan task, executorBacklog),
		done:   make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) Context() context.Context {
	return e.ctx
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		select {
		case <-e.ctx.Done():
			e.mu.Lock()
			e.closed = true
			e.mu.Unlock()
			for {
				select {
				case t := <-e.tasks:
					t.fail(ErrExecutorClosed)
				default:
					return
				}
			}
		case t := <-e.tasks:
			t.run(e.ctx)
		}
	}
}

// Close stops the executor and waits for running work, including work
// started with Go, to return.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	<-e.done
	e.wg.Wait()
}

// Submit schedules fn on the executor. Errors and panics from fn are
// delivered through the returned future.
func Submit[T any](e *Executor, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T
	t := task{
		run: func(ctx context.Context) {
			defer func() {
				if r := recover(); r != nil {
					f.resolve(zero, fmt.Errorf("panic in session task: %v", r))
				}
			}()
			v, err := fn(ctx)
			f.resolve(v, err)
		},
		fail: func(err error) {
			f.resolve(zero, err)
		},
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		f.resolve(zero, ErrExecutorClosed)
		return f
	}
	select {
	case e.tasks <- t:
	case <-e.ctx.Done():
		f.resolve(zero, ErrExecutorClosed)
	}
	return f
}

// Go runs fn on its own goroutine bound to the executor's lifetime. It is
// for slow work, such as fetching remote content, that must not hold up
// the task loop.
func Go[T any](e *Executor, ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		f.resolve(zero, ErrExecutorClosed)
		return f
	}
	e.wg.Add(1)
	e.mu.RUnlock()

	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				f.resolve(zero, fmt.Errorf("panic in session work: %v", r))
			}
		}()
		v, err := fn(ctx)
		f.resolve(v, err)
	}()
	return f
}
