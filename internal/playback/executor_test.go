package playback

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutor_RunsTasksInOrder(t *testing.T) {
	e := NewExecutor(context.Background())
	defer e.Close()

	var got []int
	var last *Future[int]
	for i := 0; i < 100; i++ {
		last = Submit(e, func(context.Context) (int, error) {
			got = append(got, i)
			return i, nil
		})
	}

	v, err := last.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if v != 99 {
		t.Errorf("last value = %d, want 99", v)
	}
	for i, n := range got {
		if n != i {
			t.Fatalf("task %d ran at position %d", n, i)
		}
	}
}

func TestExecutor_ForwardsErrorsAndPanics(t *testing.T) {
	e := NewExecutor(context.Background())
	defer e.Close()

	boom := errors.New("boom")
	_, err := Submit(e, func(context.Context) (struct{}, error) {
		return struct{}{}, boom
	}).Wait(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}

	_, err = Submit(e, func(context.Context) (struct{}, error) {
		panic("bad state")
	}).Wait(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad state") {
		t.Errorf("panic error = %v", err)
	}

	v, err := Submit(e, func(context.Context) (string, error) {
		return "still running", nil
	}).Wait(context.Background())
	if err != nil || v != "still running" {
		t.Errorf("executor did not survive panic: %q, %v", v, err)
	}
}

func TestExecutor_SubmitAfterClose(t *testing.T) {
	e := NewExecutor(context.Background())
	e.Close()

	_, err := Submit(e, func(context.Context) (int, error) { return 1, nil }).Wait(context.Background())
	if !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("Submit() after Close error = %v", err)
	}
	_, err = Go(e, context.Background(), func(context.Context) (int, error) { return 1, nil }).Wait(context.Background())
	if !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("Go() after Close error = %v", err)
	}
}

func TestExecutor_CloseWaitsForBackgroundWork(t *testing.T) {
	e := NewExecutor(context.Background())

	started := make(chan struct{})
	var finished atomic.Bool
	Go(e, e.Context(), func(ctx context.Context) (struct{}, error) {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished.Store(true)
		return struct{}{}, ctx.Err()
	})

	<-started
	e.Close()
	if !finished.Load() {
		t.Error("Close() returned before background work finished")
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	f := newFuture[int]()
	select {
	case <-f.Done():
		t.Error("Done() closed for an unresolved future")
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v", err)
	}

	f.resolve(7, nil)
	f.resolve(8, nil)
	v, err := f.Wait(context.Background())
	if err != nil || v != 7 {
		t.Errorf("Wait() = %d, %v; want 7, nil", v, err)
	}
}
