// Package static implements the static directive that assigns fixed
// IP addresses to clients based on their MAC address
package static

import (
	"context"
	"net"

	"github.com/insomniacslk/dhcp/dhcpv4"

	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/tetherserver"
	"github.com/nexttether/nexttether/plugin"
)

// Plugin allows assignment of static IP addresses to clients
// based on the MAC address. It implements plugin.Handler
type Plugin struct {
	Config    *tetherserver.Config
	Next      plugin.Handler
	Addresses map[string]net.IP
	L         log.Logger
}

// Name returns "static" and implements plugin.Handler
func (s *Plugin) Name() string {
	return "static"
}

// ServeDHCP serves a DHCP request and implements plugin.Handler. If the requesting MAC
// address of the client is configured a static IP lease will be sent
func (s *Plugin) ServeDHCP(ctx context.Context, req, res *dhcpv4.DHCPv4) error {
	static, hasStatic := s.Addresses[req.ClientHWAddr.String()]
	if (tetherserver.Discover(req) || tetherserver.Request(req)) && hasStatic {
		// Make sure to deny a DHCPREQUEST for a different IP address.
		// For DHCPDISCOVER we can safely ignore the RequestedIPAddress field by RFC
		if tetherserver.Request(req) {
			reqIP := req.RequestedIPAddress()
			if reqIP == nil || reqIP.IsUnspecified() {
				reqIP = req.ClientIPAddr
			}

			if reqIP.String() != static.String() {
				s.L.Warnf("%s: denying request for IP %s", req.ClientHWAddr.String(), reqIP)

				res.UpdateOption(dhcpv4.OptMessageType(dhcpv4.MessageTypeNak))
				return s.Next.ServeDHCP(ctx, req, res)
			}

			res.UpdateOption(dhcpv4.OptMessageType(dhcpv4.MessageTypeAck))
		}
		if tetherserver.Discover(req) {
			res.UpdateOption(dhcpv4.OptMessageType(dhcpv4.MessageTypeOffer))
		}

		res.YourIPAddr = static

		if req.IsOptionRequested(dhcpv4.OptionSubnetMask) {
			res.UpdateOption(dhcpv4.OptSubnetMask(s.Config.Network.Mask))
		}

		s.L.Infof("%s: serving static IP %s (%s)", req.ClientHWAddr, res.YourIPAddr, req.MessageType())
		return s.Next.ServeDHCP(ctx, req, res)
	}

	return s.Next.ServeDHCP(ctx, req, res)
}
