//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool(t *testing.T) {
	t.Run("should run submitted tasks", func(t *testing.T) {
		p := NewPool(2, nil)
		p.Start(context.Background())
		defer p.Stop()

		var ran int32
		done := make(chan struct{}, 3)
		for i := 0; i < 3; i++ {
			if err := p.Submit(func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				done <- struct{}{}
				return nil
			}); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
		}
		for i := 0; i < 3; i++ {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for tasks")
			}
		}
		if atomic.LoadInt32(&ran) != 3 {
			t.Errorf("expected 3 tasks to run, got %d", ran)
		}
	})

	t.Run("should reject nil tasks", func(t *testing.T) {
		p := NewPool(1, nil)
		if err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
			t.Errorf("expected ErrNilTask, got %v", err)
		}
	})

	t.Run("should report a full queue", func(t *testing.T) {
		p := NewPool(1, nil) // not started, capacity 4
		noop := func(ctx context.Context) error { return nil }
		for i := 0; i < 4; i++ {
			if err := p.Submit(noop); err != nil {
				t.Fatalf("unexpected error on submit %d: %v", i, err)
			}
		}
		if err := p.Submit(noop); !errors.Is(err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("should survive a panicking task", func(t *testing.T) {
		p := NewPool(1, nil)
		p.Start(context.Background())
		defer p.Stop()

		done := make(chan struct{})
		_ = p.Submit(func(ctx context.Context) error { panic("boom") })
		_ = p.Submit(func(ctx context.Context) error { close(done); return nil })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not recover from panic")
		}
	})

	t.Run("should allow Stop to be called twice", func(t *testing.T) {
		p := NewPool(1, nil)
		p.Start(context.Background())
		p.Stop()
		p.Stop()
	})
}
