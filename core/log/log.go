// Package log provides the logging interface used throughout
// NextTether. It is a thin layer on top of github.com/apex/log
// that supports attaching contextual fields to a context.Context
package log

import (
	"context"

	"github.com/apex/log"
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
)

// Logger is the structured logging interface used by all
// NextTether packages
type Logger = log.Interface

// Fields is the set of structured fields attached to a log entry
type Fields = log.Fields

type fieldsKey struct{}

// Default returns the default application logger
func Default() Logger {
	return log.Log
}

// GetLogger returns a logger for the given plugin directive. The
// returned logger has a "plugin" field attached
func GetLogger(c *caddy.Controller, plugin interface{ Name() string }) Logger {
	return log.WithField("plugin", plugin.Name())
}

// AddClientFields returns a new context.Context that carries log
// fields describing the given tethered client
func AddClientFields(parent context.Context, cli *client.Tethered) context.Context {
	fields := log.Fields{
		"hwaddr": cli.HwAddr.String(),
		"type":   cli.Type.String(),
	}

	if hostname := cli.Hostname(); hostname != "" {
		fields["hostname"] = hostname
	}

	return context.WithValue(parent, fieldsKey{}, fields)
}

// AddFields returns a new context.Context that has the given log
// fields attached
func AddFields(parent context.Context, fields log.Fields) context.Context {
	return context.WithValue(parent, fieldsKey{}, fields)
}

// With returns a logger that includes all fields attached to ctx
func With(ctx context.Context, l Logger) Logger {
	val := ctx.Value(fieldsKey{})
	if val == nil {
		return l
	}

	fields, ok := val.(log.Fields)
	if !ok {
		return l
	}

	return l.WithFields(fields)
}
