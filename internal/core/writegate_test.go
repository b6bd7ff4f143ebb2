package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWriteGate_AcquireRelease(t *testing.T) {
	gate := NewWriteGate(time.Second)
	ctx := context.Background()

	if got := gate.Holder(); got != "" {
		t.Errorf("initial Holder = %q, want empty", got)
	}

	if err := gate.Acquire(ctx, "create"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if got := gate.Holder(); got != "create" {
		t.Errorf("Holder = %q, want create", got)
	}

	gate.Release()

	if got := gate.Holder(); got != "" {
		t.Errorf("after Release, Holder = %q, want empty", got)
	}
}

func TestWriteGate_BusyAfterMaxWait(t *testing.T) {
	gate := NewWriteGate(100 * time.Millisecond)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "recalculateAttendance"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	start := time.Now()
	err := gate.Acquire(ctx, "create")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}

	gate.Release()
}

func TestWriteGate_Serializes(t *testing.T) {
	gate := NewWriteGate(5 * time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	active, maxObserved := 0, 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background(), "update"); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer gate.Release()

			mu.Lock()
			active++
			if active > maxObserved {
				maxObserved = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxObserved != 1 {
		t.Errorf("observed %d concurrent holders, want 1", maxObserved)
	}
}

func TestWriteGate_ContextCancellation(t *testing.T) {
	gate := NewWriteGate(5 * time.Second)

	if err := gate.Acquire(context.Background(), "sync"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- gate.Acquire(cancelCtx, "delete")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}

	gate.Release()
}

func TestWriteGate_WaitForDrain(t *testing.T) {
	gate := NewWriteGate(time.Second)
	gate.Acquire(context.Background(), "recalculateAttendance")

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- gate.WaitForDrain(context.Background())
	}()

	select {
	case <-drainDone:
		t.Error("WaitForDrain returned while the gate was held")
	case <-time.After(50 * time.Millisecond):
	}

	gate.Release()

	select {
	case err := <-drainDone:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}
}

func TestWriteGate_Status(t *testing.T) {
	gate := NewWriteGate(time.Second)
	gate.Acquire(context.Background(), "syncDataFromForms")

	status := gate.Status()
	if status.Holder != "syncDataFromForms" {
		t.Errorf("Holder = %q, want syncDataFromForms", status.Holder)
	}
	if status.Since.IsZero() {
		t.Error("Since should be set while held")
	}
	if status.Waiting != 0 {
		t.Errorf("Waiting = %d, want 0", status.Waiting)
	}

	gate.Release()
}

func TestWriteGate_DefaultWait(t *testing.T) {
	gate := NewWriteGate(0)
	if gate.maxWait != 30*time.Second {
		t.Errorf("maxWait = %v, want 30s", gate.maxWait)
	}
}
