package activity

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestTryAcquireExclusive(t *testing.T) {
	g := NewGate()
	release, err := g.TryAcquire(Session)
	if err != nil {
		t.Fatalf("TryAcquire(Session) error = %v", err)
	}
	for _, k := range []Kind{Session, Training, Enrollment} {
		if _, err := g.TryAcquire(k); !errors.Is(err, ErrBusy) {
			t.Errorf("TryAcquire(%s) while session held: err = %v, want ErrBusy", k, err)
		}
	}
	if g.Current() != Session {
		t.Errorf("Current() = %s, want session", g.Current())
	}

	release()
	release()
	if g.Busy() {
		t.Fatal("gate still busy after release")
	}
	if _, err := g.TryAcquire(Training); err != nil {
		t.Errorf("TryAcquire(Training) after release error = %v", err)
	}
}

func TestStaleReleaseDoesNotFreeNewOwner(t *testing.T) {
	g := NewGate()
	first, _ := g.TryAcquire(Session)
	first()
	second, err := g.TryAcquire(Session)
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}
	defer second()

	first()
	if !g.Busy() {
		t.Error("stale release freed the gate held by a new owner")
	}
}

func TestTryAcquireNone(t *testing.T) {
	if _, err := NewGate().TryAcquire(None); err == nil {
		t.Error("TryAcquire(None) succeeded")
	}
}

func TestTryAcquireRace(t *testing.T) {
	g := NewGate()
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(k Kind) {
			defer wg.Done()
			if _, err := g.TryAcquire(k); err == nil {
				winners.Add(1)
			}
		}(Kind(i%3 + 1))
	}
	wg.Wait()
	if winners.Load() != 1 {
		t.Errorf("winners = %d, want 1", winners.Load())
	}
}
