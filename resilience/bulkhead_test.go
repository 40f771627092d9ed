package resilience_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voxlab/scribe/resilience"
)

func TestBulkheadLimitsConcurrency(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 2,
		MaxWait:       time.Second,
	})

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				n := atomic.AddInt32(&current, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 concurrent executions, saw %d", p)
	}
}

func TestBulkheadRejectsWhenFull(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, resilience.ErrBulkheadFull) {
		t.Fatalf("expected ErrBulkheadFull, got %v", err)
	}
	close(release)
}

func TestBulkheadWaitTimeout(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       50 * time.Millisecond,
	})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, resilience.ErrBulkheadTimeout) {
		t.Fatalf("expected ErrBulkheadTimeout, got %v", err)
	}
	close(release)
}

func TestBulkheadExecuteWithResult(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "test", MaxConcurrent: 1})

	got, err := resilience.ExecuteWithResult(b, context.Background(), func() (string, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("expected 'done', got %q", got)
	}
}

func TestBulkheadPropagatesError(t *testing.T) {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "test", MaxConcurrent: 1})

	want := errors.New("boom")
	if err := b.Execute(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if b.InUse() != 0 {
		t.Fatalf("slot not released after error, in use: %d", b.InUse())
	}
}
