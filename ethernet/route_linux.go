//go:build linux

package ethernet

import (
	"net/netip"
	"syscall"

	"go.uber.org/zap"
)

// Gateways returns every gateway address found in a netlink dump of the
// IPv4 routing table. Best effort: failures log and yield an empty slice.
func Gateways() []netip.Addr {
	ret := []netip.Addr{}
	netlinks, err := syscall.NetlinkRIB(syscall.RTM_GETROUTE, syscall.AF_INET)
	if err != nil {
		logger.Error("NetlinkRIB failed", zap.Error(err))
		return ret
	}
	nmsg, err := syscall.ParseNetlinkMessage(netlinks)
	if err != nil {
		logger.Error("ParseNetlinkMessage failed", zap.Error(err))
		return ret
	}
	for _, m := range nmsg {
		if m.Header.Type == syscall.RTM_NEWROUTE {
			attrs, err := syscall.ParseNetlinkRouteAttr(&m)
			if err != nil {
				logger.Error("ParseNetlinkRouteAttr failed", zap.Error(err))
				continue
			}
			for _, attr := range attrs {
				if attr.Attr.Type == syscall.RTA_GATEWAY {
					if g, ok := netip.AddrFromSlice(attr.Value); ok {
						ret = append(ret, g)
					}
				}
			}
		}
	}
	return ret
}
