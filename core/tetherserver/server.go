package tetherserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/caddyserver/caddy"
	"github.com/insomniacslk/dhcp/dhcpv4"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/lease"
	"github.com/nexttether/nexttether/core/socket"
	"github.com/nexttether/nexttether/core/tracker"
)

// Server serves DHCP clients on one shared downstream network and
// feeds the lease database of that downstream into the connected
// clients tracker
type Server struct {
	dhcpWg sync.WaitGroup
	cfg    *Config

	mu   sync.Mutex
	conn net.PacketConn
}

// NewServer returns a new downstream server that compiles all plugins into it
func NewServer(cfg *Config) (*Server, error) {
	return &Server{cfg: cfg}, nil
}

// Serve is a NO-OP as TCP is not supported. It implements the
// caddy.TCPServer interface
func (s *Server) Serve(l net.Listener) error {
	return nil
}

// Listen does nothing as TCP is not supported. It implements the
// caddy.TCPServer interface
func (s *Server) Listen() (net.Listener, error) {
	return nil, nil
}

// ListenPacket starts listening for DHCP request messages via UDP/Raw sockets.
// This implements the caddy.UDPServer interface
func (s *Server) ListenPacket() (net.PacketConn, error) {
	return socket.ListenDHCP(s.cfg.logger, s.cfg.IP, &s.cfg.Interface)
}

// ServePacket starts the server with an existing PacketConn. It blocks until
// the server stops. This implements the caddy.UDPServer interface
func (s *Server) ServePacket(c net.PacketConn) error {
	if _, ok := c.(*socket.DHCPConn); !ok {
		return errors.New("expected socket.DHCPConn")
	}

	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()

	for {
		payload := make([]byte, 4096)
		byteLen, addr, err := c.ReadFrom(payload)

		if byteLen > 0 {
			s.cfg.logger.Debugf("serving request from %s", addr)
			s.dhcpWg.Add(1)
			go s.serveAndLogDHCPv4(c, payload[:byteLen], addr)
		}

		if err != nil {
			if opErr, ok := err.(*net.OpError); ok {
				if opErr.Temporary() || opErr.Timeout() {
					continue
				}
			}

			return err
		}
	}
}

// OnStartupComplete is called when all servers of the same instance have
// been started. It launches the connected clients coordinator.
// It implements the caddy.AfterStartup interface
func (s *Server) OnStartupComplete() {
	info := getStartupInfo([]*Config{s.cfg})
	if info != "" {
		// Print not Println because info contains a trailing new line
		fmt.Print(info)
	}

	// safe to call from every server, only the first call launches
	// the goroutine
	s.cfg.coordinator.Start()
	s.cfg.coordinator.Kick()
}

// Stop terminates the connected clients coordinator, closes the
// downstream socket and waits for in-flight DHCP requests to finish.
// Caddy calls it on shutdown and when an instance is replaced during
// a reload. It implements the caddy.GracefulServer interface
func (s *Server) Stop() error {
	// the coordinator is shared by all downstreams of the instance,
	// stopping it more than once is a no-op
	s.cfg.coordinator.Stop()

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	s.dhcpWg.Wait()

	return err
}

// Address returns the downstream subnet this server is bound to. It
// implements the caddy.GracefulServer interface
func (s *Server) Address() string {
	return s.cfg.Network.String()
}

// WrapListener returns the listener unchanged, the server is UDP-only.
// It implements the caddy.GracefulServer interface
func (s *Server) WrapListener(ln net.Listener) net.Listener {
	return ln
}

// AllLeases returns all leases of the downstream's database grouped
// by client hardware address. The result is not filtered by expiry,
// that is the tracker's job
func (s *Server) AllLeases() []client.Tethered {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	leases, err := s.cfg.Database.Leases(ctx)
	if err != nil {
		s.cfg.logger.WithError(err).Warn("failed to enumerate leases")
		return nil
	}

	byMAC := make(map[string]*client.Tethered)
	var order []string

	for _, l := range leases {
		key := l.HwAddr.String()

		cl, ok := byMAC[key]
		if !ok {
			cl = &client.Tethered{
				HwAddr: l.HwAddr,
				Type:   s.cfg.Type,
			}
			byMAC[key] = cl
			order = append(order, key)
		}

		cl.Addresses = append(cl.Addresses, client.AddressInfo{
			Address:  l.Address,
			Hostname: l.Hostname,
			Expires:  l.Expires,
		})
	}

	result := make([]client.Tethered, 0, len(order))
	for _, key := range order {
		result = append(result, *byMAC[key])
	}

	return result
}

func (s *Server) serveAndLogDHCPv4(c net.PacketConn, payload []byte, addr net.Addr) {
	defer s.dhcpWg.Done()
	// In any case we must not panic while serving requests
	defer func() {
		if x := recover(); x != nil {
			s.cfg.logger.Errorf("caught panic while serving a DHCP request from %s: %v", addr.String(), x)
			s.cfg.logger.Errorf(string(debug.Stack()))
		}
	}()

	err := s.serveDHCPv4(c, payload, addr)
	if err != nil {
		s.cfg.logger.Warnf("failed to serve request from %s: %s", addr.String(), err.Error())
	}
}

func (s *Server) serveDHCPv4(c net.PacketConn, payload []byte, addr net.Addr) error {
	msg, err := dhcpv4.FromBytes(payload)
	if err != nil {
		return err
	}

	cfg := s.cfg

	resp, err := dhcpv4.NewReplyFromRequest(msg)
	if err != nil {
		return err
	}

	resp.ServerIPAddr = cfg.IP

	// If the request message has the server identifier option set we must check
	// if it matches our server IP and drop the request entirely if not
	reqID := msg.ServerIdentifier()
	if reqID != nil && !reqID.IsUnspecified() && reqID.String() != cfg.IP.String() {
		cfg.logger.Debugf("ignoring packet with incorrect server ID %q from %s", reqID, msg.ClientHWAddr)
		return nil
	}
	// make sure to add the server identifier option to all DHCP messages
	// as per RFC2131
	resp.UpdateOption(dhcpv4.OptServerIdentifier(cfg.IP))

	switch msg.MessageType() {
	case dhcpv4.MessageTypeDiscover:
		resp.UpdateOption(dhcpv4.OptMessageType(dhcpv4.MessageTypeOffer))
	case dhcpv4.MessageTypeRequest:
		// Response message type for Request (either ACK or NAK) should be set
		// by plugins
		fallthrough

	default:
		resp.UpdateOption(dhcpv4.OptMessageType(dhcpv4.MessageTypeNone))
	}

	cfg.logger.Debugf("-> %s from %s (%s)", msg.MessageType(), addr, msg.HostName())

	ctx := context.Background()
	ctx = lease.WithDatabase(ctx, cfg.Database)
	ctx = WithPeer(ctx, addr)

	err = cfg.chain.ServeDHCP(ctx, msg, resp)
	if err != nil && err != ErrNoResponse {
		return err
	}

	// a lease may have been bound or released, refresh the connected
	// clients list
	cfg.coordinator.Kick()

	if err == ErrNoResponse {
		return nil
	}

	// Some clients require a directed unicast with correct destination IP (the same as in resp.YourIPAddr)
	// and source MAC and IP. Android for example ignores a DHCPOFFER that originates from 255.255.255.255
	// (ff:ff:ff:ff:ff:ff) rather than the specific interface IP and hardware address.
	addr = tryMakeDirectedUnicastAddr(addr, cfg, resp)

	cfg.logger.Debugf("<- %s to %s (%s)", resp.MessageType(), addr, msg.HostName())

	response := resp.ToBytes()
	_, err = c.WriteTo(response, addr)
	return err
}

// tryMakeDirectedUnicastAddr checks if addr is a *socket.Addr and updates the Local and Remote address
// pair (IP + MAC) to be as specific as possible by replacing an unspecified/broadcast source with the
// interface IP and MAC and an unspecified destination with the to-be-leased IP address from resp.YourIPAddr
func tryMakeDirectedUnicastAddr(addr net.Addr, cfg *Config, resp *dhcpv4.DHCPv4) net.Addr {
	if a, ok := addr.(*socket.Addr); ok {
		if a.Local.IP.IsUnspecified() || a.Local.IP.String() == "255.255.255.255" {
			cfg.logger.Debugf("setting sender from %s (%s) to %s (%s)", a.Local.IP, a.Local.MAC, cfg.IP, cfg.Interface.HardwareAddr)
			a.Local.MAC = cfg.Interface.HardwareAddr
			a.Local.IP = cfg.IP
		}

		if a.RawAddr.IP.IsUnspecified() && resp.YourIPAddr != nil && !resp.YourIPAddr.IsUnspecified() {
			a.RawAddr.IP = resp.YourIPAddr
		}
	}

	return addr
}

// Compile-Time checks
var (
	_ caddy.Server         = &Server{}
	_ caddy.GracefulServer = &Server{}
	_ tracker.LeaseSource  = &Server{}
)
