package option

import (
	"github.com/caddyserver/caddy"
	"github.com/insomniacslk/dhcp/dhcpv4"

	"github.com/nexttether/nexttether/core/tetherserver"
	"github.com/nexttether/nexttether/plugin"
)

func init() {
	caddy.RegisterPlugin("option", caddy.Plugin{
		ServerType: "tether",
		Action:     setupOption,
	})
}

func setupOption(c *caddy.Controller) error {
	config := tetherserver.GetConfig(c)
	if config.Options == nil {
		config.Options = make(map[dhcpv4.OptionCode]dhcpv4.OptionValue)
	}

	// the plugin serves the option map of the downstream configuration
	// so multiple option blocks aggregate
	plg := &Plugin{
		Options: config.Options,
	}

	for c.Next() {
		if c.NextBlock() {
			name := c.Val()
			values := c.RemainingArgs()
			if len(values) == 0 {
				return c.ArgErr()
			}

			if err := plg.parseOption(name, values); err != nil {
				return err
			}

			for c.NextBlock() {
				name = c.Val()
				values = c.RemainingArgs()
				if len(values) == 0 {
					return c.ArgErr()
				}

				if err := plg.parseOption(name, values); err != nil {
					return err
				}
			}
		} else if c.NextArg() {
			name := c.Val()
			values := c.RemainingArgs()
			if len(values) == 0 {
				return c.ArgErr()
			}

			if err := plg.parseOption(name, values); err != nil {
				return err
			}
		}
	}

	config.AddPlugin(func(next plugin.Handler) plugin.Handler {
		plg.Next = next
		return plg
	})
	return nil
}
