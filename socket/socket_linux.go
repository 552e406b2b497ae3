//go:build linux

package socket

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/silexio/zping/common/constant"
)

// recvPollInterval bounds how long Recv can sit in the kernel before
// rechecking whether Close was called.
const recvPollInterval = 300 * time.Millisecond

// AFPacket is a raw AF_PACKET socket bound to one interface. Outbound
// frames go out verbatim; inbound frames are returned without their
// 14-byte Ethernet header, so callers parse from the IP header on.
type AFPacket struct {
	fd      int
	ifindex int
	closed  atomic.Bool
}

// Open binds a SOCK_RAW packet socket to the named interface and attaches
// a classic BPF program that admits only ICMP. Requires CAP_NET_RAW.
func Open(ifaceName string) (*AFPacket, error) {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("lookup interface %s: %w", ifaceName, err)
	}
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_IP)))
	if err != nil {
		return nil, fmt.Errorf("open packet socket: %w", err)
	}
	sll := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_IP),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sll); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind to %s: %w", ifaceName, err)
	}
	if err := attachICMPFilter(fd); err != nil {
		unix.Close(fd)
		return nil, err
	}
	tv := unix.NsecToTimeval(recvPollInterval.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set receive timeout: %w", err)
	}
	return &AFPacket{fd: fd, ifindex: ifi.Index}, nil
}

// attachICMPFilter installs a classic BPF program over the raw frame:
// admit when the byte at the IPv4 protocol offset is ICMP, drop otherwise.
func attachICMPFilter(fd int) error {
	protoOffset := uint32(constant.ETH_HEADER_LEN + 9)
	filter := []unix.SockFilter{
		{Code: unix.BPF_LD | unix.BPF_B | unix.BPF_ABS, K: protoOffset},
		{Code: unix.BPF_JMP | unix.BPF_JEQ | unix.BPF_K, Jt: 0, Jf: 1, K: unix.IPPROTO_ICMP},
		{Code: unix.BPF_RET | unix.BPF_K, K: uint32(constant.RECV_BUFFER_SIZE)},
		{Code: unix.BPF_RET | unix.BPF_K, K: 0},
	}
	prog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}
	if err := unix.SetsockoptSockFprog(fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &prog); err != nil {
		return fmt.Errorf("attach ICMP filter: %w", err)
	}
	return nil
}

// Send writes one complete Ethernet frame. The kernel emits packet-socket
// writes as single datagrams, so concurrent senders never interleave.
func (s *AFPacket) Send(b []byte) (int, error) {
	n, err := unix.Write(s.fd, b)
	if err != nil {
		return n, fmt.Errorf("send frame: %w", err)
	}
	return n, nil
}

// Recv fills b with the network-layer bytes of the next inbound frame.
// Returns net.ErrClosed once Close has been called.
func (s *AFPacket) Recv(b []byte) (int, error) {
	for {
		if s.closed.Load() {
			return 0, net.ErrClosed
		}
		n, _, err := unix.Recvfrom(s.fd, b, 0)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			continue
		}
		if err != nil {
			if s.closed.Load() {
				return 0, net.ErrClosed
			}
			return 0, fmt.Errorf("receive frame: %w", err)
		}
		if n <= constant.ETH_HEADER_LEN {
			// runt frame
			continue
		}
		copy(b, b[constant.ETH_HEADER_LEN:n])
		return n - constant.ETH_HEADER_LEN, nil
	}
}

func (s *AFPacket) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return unix.Close(s.fd)
}

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
