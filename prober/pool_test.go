package prober

import (
	"context"
	"testing"
	"time"
)

func TestSlotPoolLeaseRelease(t *testing.T) {
	template := []byte{0xde, 0xad, 0xbe, 0xef}
	pool := NewSlotPool(3, template)
	if got, want := pool.Size(), 3; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}

	seen := map[*Slot]bool{}
	var leased []*Slot
	for i := 0; i < 3; i++ {
		s, err := pool.Lease(context.Background())
		if err != nil {
			t.Fatalf("Lease() error: %v", err)
		}
		if seen[s] {
			t.Error("same slot leased twice concurrently")
		}
		seen[s] = true
		if string(s.Buf()) != string(template) {
			t.Errorf("slot buffer = %x, want template %x", s.Buf(), template)
		}
		leased = append(leased, s)
	}
	if got := pool.Idle(); got != 0 {
		t.Errorf("Idle() = %d with all slots leased, want 0", got)
	}

	for _, s := range leased {
		pool.Release(s)
	}
	if got := pool.Idle(); got != 3 {
		t.Errorf("Idle() = %d after releasing all, want 3", got)
	}

	// The recycled set is the original set.
	for i := 0; i < 3; i++ {
		s, err := pool.Lease(context.Background())
		if err != nil {
			t.Fatalf("Lease() error: %v", err)
		}
		if !seen[s] {
			t.Error("pool produced a slot it was not constructed with")
		}
		pool.Release(s)
	}
}

func TestSlotPoolLeaseBlocksUntilRelease(t *testing.T) {
	pool := NewSlotPool(1, []byte{0x00})
	s, err := pool.Lease(context.Background())
	if err != nil {
		t.Fatalf("Lease() error: %v", err)
	}

	got := make(chan *Slot)
	go func() {
		s2, err := pool.Lease(context.Background())
		if err != nil {
			t.Error(err)
		}
		got <- s2
	}()

	select {
	case <-got:
		t.Fatal("second Lease() returned while the only slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(s)
	select {
	case s2 := <-got:
		pool.Release(s2)
	case <-time.After(time.Second):
		t.Fatal("second Lease() still blocked after Release")
	}
}

func TestSlotPoolLeaseCancel(t *testing.T) {
	pool := NewSlotPool(1, []byte{0x00})
	s, err := pool.Lease(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Release(s)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Lease(ctx); err != context.DeadlineExceeded {
		t.Errorf("Lease() on exhausted pool = %v, want context.DeadlineExceeded", err)
	}
}

func TestSlotBuffersAreIndependent(t *testing.T) {
	pool := NewSlotPool(2, []byte{0x01, 0x02})
	a, _ := pool.Lease(context.Background())
	b, _ := pool.Lease(context.Background())
	a.Buf()[0] = 0xff
	if b.Buf()[0] == 0xff {
		t.Error("mutating one slot's buffer changed another's")
	}
	pool.Release(a)
	pool.Release(b)
}
