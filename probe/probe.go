package probe

import (
	"errors"
	"net/netip"
	"strconv"

	"github.com/silexio/zping/ethernet"
)

// ErrFrameLayout reports a buffer whose layers are not where the template
// layout put them. Recoverable; scoped to the single attempt that hit it.
var ErrFrameLayout = errors.New("frame layout mismatch")

// TargetParams identifies one probe attempt. The (Addr, Seq) pair is the
// correlation key; callers must keep it unique among attempts outstanding
// at the same instant.
type TargetParams struct {
	Addr netip.Addr
	Seq  uint16
}

// String renders the correlation key, e.g. "192.0.2.7#3".
func (t TargetParams) String() string {
	return t.Addr.String() + "#" + strconv.FormatUint(uint64(t.Seq), 10)
}

// Output is produced only from a structurally validated reply and carries
// nothing that was not on the wire.
type Output struct {
	Addr netip.Addr
	Seq  uint16
}

// Params returns the TargetParams the reply answers.
func (o *Output) Params() TargetParams {
	return TargetParams{Addr: o.Addr, Seq: o.Seq}
}

// Probe is one probe kind's codec: how to build the shared frame template,
// how to point a leased copy of it at a target, and how to recognize a
// reply. Implementations must be stateless so the pool, demux, and prober
// can share one instance across goroutines.
type Probe interface {
	// Kind tags the probe for demux registration and logging.
	Kind() string
	// BuildTemplate lays out the full link-layer frame with every
	// template-fixed field populated and checksums valid.
	BuildTemplate(conf *ethernet.Conf) ([]byte, error)
	// UpdateForTarget rewrites the per-attempt fields of buf in place.
	UpdateForTarget(buf []byte, t TargetParams) error
	// ValidateReply inspects network-layer bytes and, for a structurally
	// valid reply of this kind, returns the echoed key material.
	ValidateReply(buf []byte) (*Output, bool)
}
