package static

import (
	"fmt"
	"net"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/tetherserver"
	"github.com/nexttether/nexttether/plugin"
)

func init() {
	caddy.RegisterPlugin("static", caddy.Plugin{
		ServerType: "tether",
		Action:     setupStatic,
	})
}

func makeStaticPlugin(c *caddy.Controller) (*Plugin, error) {
	addr := make(map[string]net.IP)
	used := make(map[string]string)

	for c.Next() {
		if !c.NextArg() {
			return nil, c.ArgErr()
		}

		key := c.Val()
		if _, err := net.ParseMAC(key); err != nil {
			return nil, c.ArgErr()
		}

		if !c.NextArg() {
			return nil, c.ArgErr()
		}
		ip := net.ParseIP(c.Val())
		if ip == nil {
			return nil, c.ArgErr()
		}

		if e, ok := addr[key]; ok {
			return nil, fmt.Errorf("static IP address %s has already been configured for client %s", e.String(), key)
		}
		if m, ok := used[ip.String()]; ok {
			return nil, fmt.Errorf("static IP address %s has already been assigned to client %s", ip.String(), m)
		}

		addr[key] = ip
		used[ip.String()] = key
	}

	plg := &Plugin{
		Addresses: addr,
	}
	plg.L = log.GetLogger(c, plg)

	return plg, nil
}

func setupStatic(c *caddy.Controller) error {
	plg, err := makeStaticPlugin(c)
	if err != nil {
		return err
	}

	config := tetherserver.GetConfig(c)
	plg.Config = config

	config.AddPlugin(func(next plugin.Handler) plugin.Handler {
		plg.Next = next
		return plg
	})

	return nil
}
