//go:build linux

package ethernet

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"
)

const procNetARP = "/proc/net/arp"

// NeighborMAC returns the hardware address the kernel's neighbor table holds
// for addr on the named interface (any interface when iface is empty).
func NeighborMAC(addr netip.Addr, iface string) (net.HardwareAddr, error) {
	f, err := os.Open(procNetARP)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", procNetARP, err)
	}
	defer f.Close()
	return parseNeighbor(f, addr, iface)
}

// parseNeighbor scans /proc/net/arp content. Columns: IP address, HW type,
// Flags, HW address, Mask, Device.
func parseNeighbor(r io.Reader, addr netip.Addr, iface string) (net.HardwareAddr, error) {
	scanner := bufio.NewScanner(r)
	scanner.Scan() // header row
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		if fields[0] != addr.String() {
			continue
		}
		if iface != "" && fields[5] != iface {
			continue
		}
		if fields[2] == "0x0" {
			// incomplete entry
			continue
		}
		mac, err := net.ParseMAC(fields[3])
		if err != nil || isZeroMAC(mac) {
			continue
		}
		return mac, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read neighbor table: %w", err)
	}
	return nil, fmt.Errorf("no neighbor entry for %s (reach it once, e.g. ping the gateway, to populate the ARP cache)", addr)
}

func isZeroMAC(mac net.HardwareAddr) bool {
	for _, b := range mac {
		if b != 0 {
			return false
		}
	}
	return true
}
