package tetherserver

import (
	"fmt"
	"net"

	"github.com/caddyserver/caddy"
	"github.com/caddyserver/caddy/caddyfile"

	"github.com/nexttether/nexttether/core/coordinator"
	"github.com/nexttether/nexttether/core/log"
)

const serverType = "tether"

func init() {
	caddy.RegisterServerType(serverType, caddy.ServerType{
		Directives: func() []string { return Directives },
		DefaultInput: func() caddy.Input {
			return caddy.CaddyfileInput{
				Filepath:       "Tetherfile",
				Contents:       []byte{},
				ServerTypeName: serverType,
			}
		},
		NewContext: newContext,
	})
}

func newContext(i *caddy.Instance) caddy.Context {
	return &tetherContext{
		keyToConfig: make(map[string]*Config),
		coordinator: coordinator.New(),
	}
}

type tetherContext struct {
	configs     []*Config
	keyToConfig map[string]*Config

	// coordinator is shared by all downstreams of the instance
	coordinator *coordinator.Coordinator
}

func (c *tetherContext) addConfig(key string, cfg *Config) {
	c.configs = append(c.configs, cfg)
	c.keyToConfig[key] = cfg
}

// InspectServerBlocks parses every server block key as the CIDR
// notation of the downstream subnet. It implements the
// caddy.Context interface
func (c *tetherContext) InspectServerBlocks(sourceFile string, serverBlocks []caddyfile.ServerBlock) ([]caddyfile.ServerBlock, error) {
	for si, s := range serverBlocks {
		for ki, k := range s.Keys {
			ip, ipNet, err := net.ParseCIDR(k)
			if err != nil {
				return nil, fmt.Errorf("invalid IP network address %q in server block %d", k, si)
			}

			cfg := &Config{
				IP:          ip,
				Network:     *ipNet,
				logger:      log.Default(),
				coordinator: c.coordinator,
			}

			configKey := keyForConfig(si, ki)
			c.addConfig(configKey, cfg)
		}
	}

	return serverBlocks, nil
}

// MakeServers prepares all downstream configurations and returns one
// server per downstream. It implements the caddy.Context interface
func (c *tetherContext) MakeServers() ([]caddy.Server, error) {
	for _, cfg := range c.configs {
		if !findInterface(cfg) {
			return nil, fmt.Errorf("failed to find interface for subnet %s", cfg.Network.String())
		}

		if !cfg.TypeConfigured {
			cfg.Type = inferType(cfg.Interface.Name)
		}

		if err := openDatabase(cfg); err != nil {
			return nil, fmt.Errorf("failed to open database for subnet %s: %s", cfg.Network.String(), err.Error())
		}

		if err := buildMiddlewareChain(cfg); err != nil {
			return nil, fmt.Errorf("failed to build middleware chain for subnet %s: %s", cfg.Network.String(), err.Error())
		}
	}

	var servers []caddy.Server
	for _, cfg := range c.configs {
		s, err := NewServer(cfg)
		if err != nil {
			return servers, err
		}

		// every downstream feeds the connected clients tracker
		c.coordinator.AddLeaseSource(s)

		servers = append(servers, s)
	}

	return servers, nil
}
