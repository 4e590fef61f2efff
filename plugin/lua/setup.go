package lua

import (
	"fmt"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/events"
	"github.com/nexttether/nexttether/core/log"
)

var setupCount int

func init() {
	caddy.RegisterPlugin("lua", caddy.Plugin{
		ServerType: "tether",
		Action:     setupLua,
	})
}

func setupLua(c *caddy.Controller) error {
	c.Next()

	if !c.NextArg() {
		return c.ArgErr()
	}

	plg, err := newFromFile(c.Val())
	if err != nil {
		return err
	}
	plg.l = log.GetLogger(c, plg)

	if c.Next() {
		plg.vm.Close()
		return c.SyntaxErr("only one \"lua\" directive is allowed")
	}

	plg.start()
	c.OnShutdown(plg.close)

	setupCount++
	events.RegisterClientEventHook(fmt.Sprintf("lua-%d-connect", setupCount), events.EventClientConnected, plg.handleEvent)
	events.RegisterClientEventHook(fmt.Sprintf("lua-%d-disconnect", setupCount), events.EventClientDisconnected, plg.handleEvent)

	return nil
}
