// Package database implements the database directive that configures
// the lease storage backend of a downstream network.
package database

import (
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/lease/storage"
	"github.com/nexttether/nexttether/core/tetherserver"
)

func init() {
	caddy.RegisterPlugin("database", caddy.Plugin{
		ServerType: "tether",
		Action:     parseDatabaseDirective,
	})
}

func parseDatabaseDirective(c *caddy.Controller) error {
	if !c.Next() {
		return c.ArgErr()
	}

	if !c.NextArg() {
		return c.ArgErr()
	}
	driverName := c.Val()

	var options = make(map[string][]string)
	remaining := c.RemainingArgs()
	if len(remaining) > 0 {
		options["__args__"] = remaining
	}

	for c.NextBlock() {
		options[c.Val()] = c.RemainingArgs()
	}

	if c.Next() {
		return c.ArgErr()
	}

	store, err := storage.Open(driverName, options)
	if err != nil {
		return err
	}

	db := storage.NewDatabase(store)

	tetherserver.GetConfig(c).Database = db

	return nil
}
