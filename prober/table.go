package prober

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/silexio/zping/probe"
)

// Table is the correlation table: correlation key -> single-use completion
// handle. An entry exists from just before its send until whichever of
// delivery and timeout pops it first; the loser's Pop is a no-op.
type Table struct {
	entries cmap.ConcurrentMap[string, chan *probe.Output]
}

func NewTable() *Table {
	return &Table{entries: cmap.New[chan *probe.Output]()}
}

// Insert creates the completion handle for key. The handle is buffered
// with capacity 1 so the demux can deliver without ever blocking, even
// against a caller that already gave up. Returns ErrDuplicateProbe when an
// attempt with the same key is still in flight.
func (t *Table) Insert(key string) (chan *probe.Output, error) {
	ch := make(chan *probe.Output, 1)
	if !t.entries.SetIfAbsent(key, ch) {
		return nil, ErrDuplicateProbe
	}
	return ch, nil
}

// Pop removes and returns the handle for key. Atomic: of any number of
// racing Pops for one key exactly one wins. Whoever wins owns the sole
// right to send on the handle or to abandon it.
func (t *Table) Pop(key string) (chan *probe.Output, bool) {
	return t.entries.Pop(key)
}

// Pending reports the number of live entries.
func (t *Table) Pending() int {
	return t.entries.Count()
}
