package constant

import "time"

// echo request template fields
const (
	ICMPId  uint16 = 42
	IPv4TTL uint8  = 101
)

// frame geometry, minimum header sizes
const (
	ETH_HEADER_LEN  int = 14
	IPV4_HEADER_LEN int = 20
	ICMP_ECHO_LEN   int = 8
)

// prober defaults
const (
	DEFAULT_SLOT_COUNT int           = 100
	DEFAULT_TIMEOUT    time.Duration = 5000 * time.Millisecond
)

// target validation bounds
const (
	MIN_PROBE_COUNT int = 1
	MAX_PROBE_COUNT int = 10

	MIN_PROBE_INTERVAL time.Duration = 1 * time.Millisecond
	MAX_PROBE_INTERVAL time.Duration = 1000 * time.Millisecond
)

const (
	RECV_BUFFER_SIZE       int = 2048
	MAX_DISPATCH_POOL_SIZE int = 512
)
