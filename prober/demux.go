package prober

import (
	"errors"
	"net"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/silexio/zping/common"
	"github.com/silexio/zping/common/constant"
	"github.com/silexio/zping/metrics"
	"github.com/silexio/zping/probe"
	"github.com/silexio/zping/socket"
)

var logger = common.GetLogger()

// handler pairs a probe kind's codec with the correlation table its
// in-flight attempts wait on.
type handler struct {
	pb    probe.Probe
	table *Table
}

// Demux owns the receive half of the socket. A single loop reads inbound
// datagrams and hands each one to a bounded worker pool that validates it
// and, when a correlation entry matches, delivers through that entry's
// completion handle. Unmatched and malformed packets are dropped silently.
type Demux struct {
	sock     socket.Socket
	handlers cmap.ConcurrentMap[string, *handler]
	workers  *ants.PoolWithFunc
	bufs     sync.Pool
	mx       *metrics.Metrics
	wg       sync.WaitGroup
	once     sync.Once
}

type inbound struct {
	buf []byte
	n   int
}

func NewDemux(sock socket.Socket) (*Demux, error) {
	d := &Demux{
		sock:     sock,
		handlers: cmap.New[*handler](),
		mx:       metrics.Default(),
	}
	d.bufs.New = func() any {
		return make([]byte, constant.RECV_BUFFER_SIZE)
	}
	workers, err := ants.NewPoolWithFunc(constant.MAX_DISPATCH_POOL_SIZE, d.dispatch, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	d.workers = workers
	return d, nil
}

// Register makes replies of pb's kind resolvable against table.
func (d *Demux) Register(kind string, pb probe.Probe, table *Table) {
	d.handlers.Set(kind, &handler{pb: pb, table: table})
}

func (d *Demux) Unregister(kind string) {
	d.handlers.Remove(kind)
}

// Start launches the receive loop. The loop exits when the socket is
// closed.
func (d *Demux) Start() {
	d.wg.Add(1)
	go d.recvLoop()
}

func (d *Demux) recvLoop() {
	defer d.wg.Done()
	for {
		buf := d.bufs.Get().([]byte)
		n, err := d.sock.Recv(buf)
		if err != nil {
			d.bufs.Put(buf)
			if errors.Is(err, net.ErrClosed) {
				logger.Debug("Receive loop stopped")
				return
			}
			logger.Debug("Receive failed", zap.Error(err))
			continue
		}
		pkt := &inbound{buf: buf, n: n}
		if err := d.workers.Invoke(pkt); err != nil {
			// Pool saturated; dispatch inline. Delivery cannot block
			// because completion handles are buffered.
			d.dispatch(pkt)
		}
	}
}

// dispatch validates one inbound packet against every registered probe
// kind and resolves the matching correlation entry, if any. The sole
// success-path removal point for table entries.
func (d *Demux) dispatch(v any) {
	pkt := v.(*inbound)
	defer d.bufs.Put(pkt.buf)
	data := pkt.buf[:pkt.n]
	for item := range d.handlers.IterBuffered() {
		h := item.Val
		out, ok := h.pb.ValidateReply(data)
		if !ok {
			continue
		}
		if ch, found := h.table.Pop(out.Params().String()); found {
			ch <- out
			return
		}
		logger.Debug("Reply with no pending probe", zap.Stringer("addr", out.Addr), zap.Uint16("seq", out.Seq))
	}
	d.mx.RecordDiscard()
}

// Close releases the worker pool after the receive loop has drained.
// Callers must close the socket first to unblock the loop.
func (d *Demux) Close() {
	d.once.Do(func() {
		d.wg.Wait()
		d.workers.Release()
	})
}
