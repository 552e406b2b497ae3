// Package prober is the probe-and-correlate engine: a fixed pool of
// reusable frame buffers, a correlation table joining sends to replies,
// a single receive-side demux, and the per-call orchestration that ties
// lease, send, await, and release together.
package prober

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/silexio/zping/ethernet"
	"github.com/silexio/zping/metrics"
	"github.com/silexio/zping/probe"
	"github.com/silexio/zping/socket"
)

// Prober probes hosts through one probe kind over one socket. Safe for
// unbounded concurrent Probe calls; the slot pool bounds how many are in
// the send/await phase at once.
type Prober struct {
	pb      probe.Probe
	sock    socket.Socket
	pool    *SlotPool
	table   *Table
	demux   *Demux
	timeout time.Duration
	mx      *metrics.Metrics
	once    sync.Once
}

// New builds the frame template for pb, fills a pool of slots with copies
// of it, and starts the receive demux on sock's receive half.
func New(slots int, conf *ethernet.Conf, timeout time.Duration, sock socket.Socket, pb probe.Probe) (*Prober, error) {
	if slots < 1 {
		return nil, fmt.Errorf("slot count %d, need at least 1", slots)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout %v, need > 0", timeout)
	}
	template, err := pb.BuildTemplate(conf)
	if err != nil {
		return nil, fmt.Errorf("build %s template: %w", pb.Kind(), err)
	}
	p := &Prober{
		pb:      pb,
		sock:    sock,
		pool:    NewSlotPool(slots, template),
		table:   NewTable(),
		timeout: timeout,
		mx:      metrics.Default(),
	}
	demux, err := NewDemux(sock)
	if err != nil {
		return nil, fmt.Errorf("create demux: %w", err)
	}
	demux.Register(pb.Kind(), pb, p.table)
	demux.Start()
	p.demux = demux
	logger.Debug("Prober ready",
		zap.String("kind", pb.Kind()),
		zap.Int("slots", slots),
		zap.Duration("timeout", timeout))
	return p, nil
}

// Probe runs one attempt end to end: lease a slot, register the
// correlation entry, point the slot's frame at t and send it, then race
// the completion handle against the timeout and ctx. Exactly one send,
// one insert/remove pair, and one lease/release pair per call, on every
// path including cancellation; errors are local to the call.
func (p *Prober) Probe(ctx context.Context, t probe.TargetParams) (*probe.Output, error) {
	slot, err := p.pool.Lease(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Release(slot)

	key := t.String()
	ch, err := p.table.Insert(key)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", key, err)
	}

	if err := p.pb.UpdateForTarget(slot.Buf(), t); err != nil {
		p.table.Pop(key)
		return nil, err
	}
	start := time.Now()
	if _, err := p.sock.Send(slot.Buf()); err != nil {
		p.table.Pop(key)
		p.mx.RecordSendError()
		return nil, &IOError{Op: "send " + key, Err: err}
	}
	p.mx.RecordSend(p.pb.Kind())

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case out := <-ch:
		p.mx.RecordReply(p.pb.Kind(), time.Since(start).Seconds())
		return out, nil
	case <-timer.C:
		if out, ok := p.reclaim(key, ch); ok {
			p.mx.RecordReply(p.pb.Kind(), time.Since(start).Seconds())
			return out, nil
		}
		p.mx.RecordTimeout(p.pb.Kind())
		return nil, &TimeoutError{Params: t}
	case <-ctx.Done():
		if out, ok := p.reclaim(key, ch); ok {
			p.mx.RecordReply(p.pb.Kind(), time.Since(start).Seconds())
			return out, nil
		}
		return nil, ctx.Err()
	}
}

// reclaim removes key from the table, then drains a delivery the demux
// may have raced in ahead of the removal. The capacity-1 handle makes the
// race benign in both directions.
func (p *Prober) reclaim(key string, ch chan *probe.Output) (*probe.Output, bool) {
	p.table.Pop(key)
	select {
	case out := <-ch:
		return out, true
	default:
		return nil, false
	}
}

// Close shuts the prober down: the socket first, which stops the receive
// loop, then the demux workers. In-flight Probe calls unwind through
// their timeout or cancellation paths.
func (p *Prober) Close() error {
	var err error
	p.once.Do(func() {
		p.demux.Unregister(p.pb.Kind())
		err = p.sock.Close()
		p.demux.Close()
	})
	return err
}
