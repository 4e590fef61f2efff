// Package presence provides sources for link-layer station
// information. A presence source reports which hardware addresses are
// currently associated with one of the shared downstream networks
package presence

import (
	"context"
	"net"
)

// Source is implemented by everything that can enumerate the
// stations currently associated at the link layer
type Source interface {
	// Stations returns the hardware addresses of all currently
	// associated stations. An empty result means nobody is
	// associated, an error means no information is available this
	// cycle
	Stations(ctx context.Context) ([]net.HardwareAddr, error)
}

// SourceFunc is a convenience type to use ordinary functions as
// presence sources
type SourceFunc func(ctx context.Context) ([]net.HardwareAddr, error)

// Stations implements the Source interface
func (fn SourceFunc) Stations(ctx context.Context) ([]net.HardwareAddr, error) {
	return fn(ctx)
}
