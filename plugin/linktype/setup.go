// Package linktype implements the type directive that overrides the
// sharing technology reported for clients of a downstream network.
package linktype

import (
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/tetherserver"
)

func init() {
	caddy.RegisterPlugin("type", caddy.Plugin{
		ServerType: "tether",
		Action:     setupType,
	})
}

func setupType(c *caddy.Controller) error {
	config := tetherserver.GetConfig(c)

	c.Next()

	if !c.NextArg() {
		return c.ArgErr()
	}

	t, err := client.ParseType(c.Val())
	if err != nil {
		return c.SyntaxErr(err.Error())
	}

	config.Type = t
	config.TypeConfigured = true

	if c.Next() {
		return c.SyntaxErr("only one \"type\" directive is allowed")
	}

	return nil
}
