package ethernet

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket/layers"
	"go.uber.org/zap"

	"github.com/silexio/zping/common"
)

var logger = common.GetLogger()

// Conf carries the resolved link-layer parameters every outgoing frame
// shares: source MAC and IPv4 of the chosen interface, the next hop's MAC,
// and the ethertype.
type Conf struct {
	Iface     string
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	EtherType layers.EthernetType
	SrcIP     netip.Addr
}

// New resolves a Conf for the named interface.
func New(ifaceName string) (*Conf, error) {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("lookup interface %s: %w", ifaceName, err)
	}
	return fromInterface(ifi)
}

// Any picks the first up, non-loopback interface that carries an IPv4
// address and can reach a gateway.
func Any() (*Conf, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for i := range ifs {
		ifi := &ifs[i]
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		conf, err := fromInterface(ifi)
		if err != nil {
			logger.Debug("Skip interface", zap.String("iface", ifi.Name), zap.Error(err))
			continue
		}
		return conf, nil
	}
	return nil, fmt.Errorf("no usable interface with an IPv4 address and gateway")
}

func fromInterface(ifi *net.Interface) (*Conf, error) {
	srcIP, prefix, err := firstIPv4(ifi)
	if err != nil {
		return nil, err
	}
	gateway, err := gatewayFor(prefix)
	if err != nil {
		return nil, err
	}
	dstMAC, err := NeighborMAC(gateway, ifi.Name)
	if err != nil {
		return nil, err
	}
	conf := &Conf{
		Iface:     ifi.Name,
		SrcMAC:    ifi.HardwareAddr,
		DstMAC:    dstMAC,
		EtherType: layers.EthernetTypeIPv4,
		SrcIP:     srcIP,
	}
	logger.Debug("Resolved ethernet conf",
		zap.String("iface", conf.Iface),
		zap.Stringer("srcIP", conf.SrcIP),
		zap.Stringer("gateway", gateway),
		zap.String("dstMAC", dstMAC.String()))
	return conf, nil
}

func firstIPv4(ifi *net.Interface) (netip.Addr, netip.Prefix, error) {
	addrs, err := ifi.Addrs()
	if err != nil {
		return netip.Addr{}, netip.Prefix{}, fmt.Errorf("addresses of %s: %w", ifi.Name, err)
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if ok {
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				addr, _ := netip.AddrFromSlice(ip4)
				ones, _ := ipNet.Mask.Size()
				prefix, err := addr.Prefix(ones)
				if err != nil {
					continue
				}
				return addr, prefix, nil
			}
		}
	}
	return netip.Addr{}, netip.Prefix{}, fmt.Errorf("no IPv4 address on %s", ifi.Name)
}

// gatewayFor prefers a gateway on the interface's own subnet, falling back
// to the first IPv4 gateway the routing table offers.
func gatewayFor(prefix netip.Prefix) (netip.Addr, error) {
	gateways := Gateways()
	for _, gw := range gateways {
		if gw.Is4() && prefix.Contains(gw) {
			return gw, nil
		}
	}
	for _, gw := range gateways {
		if gw.Is4() {
			return gw, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no IPv4 gateway in routing table")
}
