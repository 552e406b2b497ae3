package prober

import (
	"context"

	"github.com/silexio/zping/metrics"
)

// Slot owns one reusable frame buffer. Between Lease and Release exactly
// one goroutine may touch Buf; the pool hands out each slot to at most one
// borrower at a time.
type Slot struct {
	buf []byte
}

// Buf returns the slot's frame buffer for in-place mutation and sending.
func (s *Slot) Buf() []byte {
	return s.buf
}

// SlotPool is a fixed-size free list of Slots, each pre-populated with a
// copy of the frame template. The pool size is the admission-control
// bound: at most that many probe attempts can be in the send/await phase
// at once. Slots live for the process; they recycle, never reallocate.
type SlotPool struct {
	free chan *Slot
	size int
	mx   *metrics.Metrics
}

// NewSlotPool builds n slots, each holding its own copy of template.
func NewSlotPool(n int, template []byte) *SlotPool {
	p := &SlotPool{
		free: make(chan *Slot, n),
		size: n,
		mx:   metrics.Default(),
	}
	for i := 0; i < n; i++ {
		buf := make([]byte, len(template))
		copy(buf, template)
		p.free <- &Slot{buf: buf}
	}
	return p
}

// Lease blocks until a slot is free or ctx is done. Fairness among blocked
// callers is best effort.
func (p *SlotPool) Lease(ctx context.Context) (*Slot, error) {
	select {
	case s := <-p.free:
		p.mx.SlotsInUse.Inc()
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a leased slot to the free set. Must run on every exit
// path of a lease so the pool size is invariant over time.
func (p *SlotPool) Release(s *Slot) {
	p.mx.SlotsInUse.Dec()
	p.free <- s
}

// Size reports the configured slot count.
func (p *SlotPool) Size() int {
	return p.size
}

// Idle reports how many slots are currently free.
func (p *SlotPool) Idle() int {
	return len(p.free)
}
