// Package presence implements the presence directive that attaches
// link-layer station sources to a downstream network. Stations reported
// by a presence source count as connected even before they acquired a
// lease.
package presence

import (
	"time"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/presence"
	"github.com/nexttether/nexttether/core/tetherserver"
)

func init() {
	caddy.RegisterPlugin("presence", caddy.Plugin{
		ServerType: "tether",
		Action:     setupPresence,
	})
}

func setupPresence(c *caddy.Controller) error {
	config := tetherserver.GetConfig(c)

	for c.Next() {
		if !c.NextArg() {
			return c.ArgErr()
		}

		kind := c.Val()
		args := c.RemainingArgs()

		switch kind {
		case "arp":
			timeout := presence.DefaultARPTimeout
			if len(args) > 1 {
				return c.ArgErr()
			}
			if len(args) == 1 {
				d, err := time.ParseDuration(args[0])
				if err != nil {
					return c.SyntaxErr(err.Error())
				}
				timeout = d
			}

			// the interface is not resolved before server setup so the
			// scanner must be created on startup
			c.OnStartup(func() error {
				scanner, err := presence.NewARPScanner(config.Interface.Name, timeout)
				if err != nil {
					return err
				}

				config.Coordinator().AddPresenceSource(scanner)
				return nil
			})

		case "hostapd":
			var socket string
			switch len(args) {
			case 0:
			case 1:
				socket = args[0]
			default:
				return c.ArgErr()
			}

			c.OnStartup(func() error {
				path := socket
				if path == "" {
					path = presence.SocketForInterface(config.Interface.Name)
				}

				config.Coordinator().AddPresenceSource(presence.NewHostapd(path))
				return nil
			})

		default:
			return c.SyntaxErr("unknown presence source, expected \"arp\" or \"hostapd\"")
		}
	}

	return nil
}
