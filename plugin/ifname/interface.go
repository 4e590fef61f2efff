// Package ifname implements the interface directive that binds a
// downstream network to a specific network interface.
package ifname

import (
	"fmt"
	"net"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/tetherserver"
)

func init() {
	caddy.RegisterPlugin("interface", caddy.Plugin{
		ServerType: "tether",
		Action:     setupInterface,
	})
}

func setupInterface(c *caddy.Controller) error {
	config := tetherserver.GetConfig(c)

	for c.Next() {
		if !c.NextArg() {
			return c.ArgErr()
		}

		ifc, err := net.InterfaceByName(c.Val())
		if err != nil {
			return fmt.Errorf("failed to find interface with name %s: %s", c.Val(), err.Error())
		}

		config.Interface = *ifc
	}

	return nil
}
