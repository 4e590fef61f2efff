package presence

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/arp"
)

// DefaultARPTimeout is how long an ARP sweep waits for replies
const DefaultARPTimeout = 2 * time.Second

// maximum number of addresses an ARP sweep may cover
const maxSweepSize = 1 << 16

// ARPScanner discovers associated stations by sweeping the IPv4
// subnet of a downstream interface with ARP requests and collecting
// the replies. It works on any link type that carries ARP, including
// bridged and USB downstreams that provide no association events of
// their own
type ARPScanner struct {
	iface   *net.Interface
	subnet  netip.Prefix
	timeout time.Duration
}

// NewARPScanner creates a new ARP based presence source for the
// given interface. The swept subnet is taken from the first IPv4
// address assigned to the interface
func NewARPScanner(ifaceName string, timeout time.Duration) (*ARPScanner, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, err
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}

	var subnet netip.Prefix
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil {
			continue
		}

		subnet, err = netip.ParsePrefix(ipnet.String())
		if err != nil {
			return nil, err
		}
		subnet = subnet.Masked()
		break
	}

	if !subnet.IsValid() {
		return nil, fmt.Errorf("interface %s has no IPv4 address", ifaceName)
	}

	if ones := subnet.Bits(); 32-ones > 16 {
		return nil, fmt.Errorf("subnet %s is too large for an ARP sweep", subnet)
	}

	if timeout <= 0 {
		timeout = DefaultARPTimeout
	}

	return &ARPScanner{
		iface:   iface,
		subnet:  subnet,
		timeout: timeout,
	}, nil
}

// Stations implements the Source interface
func (s *ARPScanner) Stations(ctx context.Context) ([]net.HardwareAddr, error) {
	c, err := arp.Dial(s.iface)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	// fire a request for every address of the subnet
	count := 0
	for ip := s.subnet.Addr(); s.subnet.Contains(ip) && count < maxSweepSize; ip = ip.Next() {
		go c.Request(ip)
		count++
	}

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	stations := make(map[string]net.HardwareAddr)
	for {
		pkt, _, err := c.Read()
		if err != nil {
			// deadline reached, the sweep is done
			break
		}

		if pkt.Operation != arp.OperationReply {
			continue
		}
		if bytes.Equal(pkt.SenderHardwareAddr, s.iface.HardwareAddr) {
			continue
		}

		stations[pkt.SenderHardwareAddr.String()] = pkt.SenderHardwareAddr
	}

	result := make([]net.HardwareAddr, 0, len(stations))
	for _, hw := range stations {
		result = append(result, hw)
	}

	return result, nil
}
