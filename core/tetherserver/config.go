package tetherserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/caddyserver/caddy"
	"github.com/insomniacslk/dhcp/dhcpv4"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/coordinator"
	"github.com/nexttether/nexttether/core/lease"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/plugin"
)

// Config configures a single shared downstream network
type Config struct {
	// IP is the IP address of the interface we are listening on. This is required
	// to select the right downstream configuration when listening and serving
	// multiple downstreams
	IP net.IP

	// Network is the network of the downstream subnet
	Network net.IPNet

	// Interface is the network interface the downstream is served on
	Interface net.Interface

	// Type is the sharing technology of the downstream. If not
	// configured via the type directive it is inferred from the
	// interface name
	Type client.Type

	// TypeConfigured is set once the type directive has been used so
	// interface detection does not overwrite it
	TypeConfigured bool

	// Database is the lease database that is queried for new leases and reservations
	Database lease.Database

	// Options holds a map of DHCP options that should be set
	Options map[dhcpv4.OptionCode]dhcpv4.OptionValue

	// LeaseTime is the default lease time to use for new IP address leases
	LeaseTime time.Duration

	// logger is the logger used by the server serving this downstream
	logger log.Logger

	// coordinator drives the connected clients tracker shared by all
	// downstreams of the instance
	coordinator *coordinator.Coordinator

	// plugins is a list of middleware setup functions
	plugins []plugin.Plugin

	// chain is the beginning of the middleware chain for this downstream
	chain plugin.Handler
}

// AddPlugin adds a new plugin to the middleware chain
func (cfg *Config) AddPlugin(p plugin.Plugin) {
	cfg.plugins = append(cfg.plugins, p)
}

// Coordinator returns the connected clients coordinator shared by
// all downstreams of the instance
func (cfg *Config) Coordinator() *coordinator.Coordinator {
	return cfg.coordinator
}

func keyForConfig(serverBlockIndex, serverBlockKeyIndex int) string {
	return fmt.Sprintf("%d:%d", serverBlockIndex, serverBlockKeyIndex)
}

// GetConfig gets the Config that corresponds to c.
// If none exists nil is returned
func GetConfig(c *caddy.Controller) *Config {
	ctx := c.Context().(*tetherContext)
	key := keyForConfig(c.ServerBlockIndex, c.ServerBlockKeyIndex)

	return ctx.keyToConfig[key]
}

func buildMiddlewareChain(cfg *Config) error {
	var endOfChainHandler plugin.HandlerFunc = func(ctx context.Context, req, res *dhcpv4.DHCPv4) error {
		peer := GetPeer(ctx)
		cfg.logger.Debugf("%s from %s not handled. dropping", req.MessageType().String(), peer)

		return ErrNoResponse
	}

	var chain plugin.Handler = endOfChainHandler
	for i := len(cfg.plugins) - 1; i >= 0; i-- {
		chain = cfg.plugins[i](chain)
	}

	cfg.chain = chain

	return nil
}
