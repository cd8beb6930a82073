package refresh_test

import (
	"sync"
	"testing"

	"todoctl/internal/refresh"
)

func TestSignal_Bump(t *testing.T) {
	var sig refresh.Signal
	if sig.Value() != 0 {
		t.Fatalf("expected 0, got %d", sig.Value())
	}
	if got := sig.Bump(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := sig.Bump(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestSignal_ConcurrentBumps(t *testing.T) {
	var sig refresh.Signal
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sig.Bump()
		}()
	}
	wg.Wait()
	if sig.Value() != 50 {
		t.Errorf("expected 50, got %d", sig.Value())
	}
}
