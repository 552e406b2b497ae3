package icmp

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/silexio/zping/common/constant"
	"github.com/silexio/zping/ethernet"
	"github.com/silexio/zping/probe"
)

const EchoKind = "ICMP_ECHO"

// Byte offsets into the template frame, derived once from the minimum size
// of each layer. The template never grows or shrinks, so they stay valid
// for the life of the pool.
const (
	frameLen = constant.ETH_HEADER_LEN + constant.IPV4_HEADER_LEN + constant.ICMP_ECHO_LEN

	ipOffset           = constant.ETH_HEADER_LEN
	ipTotalLenOffset   = ipOffset + 2
	ipProtocolOffset   = ipOffset + 9
	ipChecksumOffset   = ipOffset + 10
	ipSrcOffset        = ipOffset + 12
	ipDstOffset        = ipOffset + 16
	icmpOffset         = ipOffset + constant.IPV4_HEADER_LEN
	icmpChecksumOffset = icmpOffset + 2
	icmpIdOffset       = icmpOffset + 4
	icmpSeqOffset      = icmpOffset + 6
)

// Echo probes hosts with ICMP Echo Requests carried in hand-finished
// Ethernet/IPv4 frames. Stateless; one instance serves every slot.
type Echo struct{}

func New() *Echo {
	return &Echo{}
}

func (e *Echo) Kind() string {
	return EchoKind
}

// BuildTemplate serializes the invariant frame once: Ethernet addressing
// from conf, IPv4 with the fixed TTL and a zero placeholder destination,
// and an Echo Request with the fixed identifier and sequence zero.
func (e *Echo) BuildTemplate(conf *ethernet.Conf) ([]byte, error) {
	buffer := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}

	ethLayer := &layers.Ethernet{
		SrcMAC:       conf.SrcMAC,
		DstMAC:       conf.DstMAC,
		EthernetType: conf.EtherType,
	}
	ipLayer := &layers.IPv4{
		Version:  4,
		TTL:      constant.IPv4TTL,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    conf.SrcIP.AsSlice(),
		DstIP:    net.IPv4zero.To4(),
	}
	icmpLayer := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       constant.ICMPId,
		Seq:      0,
	}

	err := gopacket.SerializeLayers(buffer, opts, ethLayer, ipLayer, icmpLayer)
	if err != nil {
		return nil, fmt.Errorf("serialize echo template: %w", err)
	}
	frame := buffer.Bytes()
	if len(frame) != frameLen {
		return nil, fmt.Errorf("%w: serialized %d bytes, expected %d", probe.ErrFrameLayout, len(frame), frameLen)
	}
	template := make([]byte, frameLen)
	copy(template, frame)
	return template, nil
}

// UpdateForTarget points a template copy at one attempt: destination IP,
// sequence number, and both checksums. Everything else is template-fixed.
func (e *Echo) UpdateForTarget(buf []byte, t probe.TargetParams) error {
	if len(buf) != frameLen {
		return fmt.Errorf("%w: buffer is %d bytes, template is %d", probe.ErrFrameLayout, len(buf), frameLen)
	}
	if !t.Addr.Is4() && !t.Addr.Is4In6() {
		return fmt.Errorf("target %s is not IPv4", t.Addr)
	}

	dst := t.Addr.As4()
	copy(buf[ipDstOffset:ipDstOffset+4], dst[:])
	buf[ipChecksumOffset] = 0
	buf[ipChecksumOffset+1] = 0
	binary.BigEndian.PutUint16(buf[ipChecksumOffset:], checksum(buf[ipOffset:icmpOffset]))

	binary.BigEndian.PutUint16(buf[icmpSeqOffset:], t.Seq)
	buf[icmpChecksumOffset] = 0
	buf[icmpChecksumOffset+1] = 0
	binary.BigEndian.PutUint16(buf[icmpChecksumOffset:], checksum(buf[icmpOffset:frameLen]))
	return nil
}

// ValidateReply inspects buf as an IPv4 packet with no link-layer header.
// The IPv4 header length is derived from the packet's own length fields
// (total length minus payload length) rather than read from IHL. Source
// authenticity is the correlation table's problem, not ours: anything
// structurally valid is returned.
func (e *Echo) ValidateReply(buf []byte) (*probe.Output, bool) {
	if len(buf) < constant.IPV4_HEADER_LEN+constant.ICMP_ECHO_LEN {
		return nil, false
	}
	if buf[9] != byte(layers.IPProtocolICMPv4) {
		return nil, false
	}

	totalLen := int(binary.BigEndian.Uint16(buf[2:4]))
	ihl := int(buf[0]&0x0f) * 4
	end := totalLen
	if end > len(buf) {
		end = len(buf)
	}
	payloadLen := 0
	if end > ihl {
		payloadLen = end - ihl
	}
	headerLen := totalLen - payloadLen
	if headerLen < 0 || headerLen+constant.ICMP_ECHO_LEN > len(buf) {
		return nil, false
	}

	echo := buf[headerLen:]
	if echo[0] != byte(layers.ICMPv4TypeEchoReply) || echo[1] != 0 {
		return nil, false
	}
	src, ok := netip.AddrFromSlice(buf[12:16])
	if !ok {
		return nil, false
	}
	return &probe.Output{Addr: src, Seq: binary.BigEndian.Uint16(echo[6:8])}, true
}

// checksum is the RFC 1071 internet checksum: ones'-complement of the
// ones'-complement sum of 16-bit words.
func checksum(b []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i:]))
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum>>16 + sum&0xffff
	}
	return ^uint16(sum)
}
