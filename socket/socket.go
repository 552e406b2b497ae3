// Package socket is the link-layer send/receive primitive under the prober.
package socket

// Socket sends fully formed link-layer frames and receives network-layer
// bytes. Send is safe for concurrent use and writes one atomic datagram per
// call; Recv is owned by a single reader.
type Socket interface {
	Send(b []byte) (int, error)
	Recv(b []byte) (int, error)
	Close() error
}
