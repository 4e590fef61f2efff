// Package tracker reconciles per-downstream lease records and
// link-layer station reports into a single list of connected clients
package tracker

import (
	"net"
	"time"

	"github.com/nexttether/nexttether/core/client"
)

// LeaseSource is implemented by every downstream server that hands
// out addresses to tethered clients. AllLeases returns the server's
// full current lease list without any expiry filtering
type LeaseSource interface {
	AllLeases() []client.Tethered
}

// Tracker merges the lease lists of all downstream servers with the
// set of stations currently associated at the link layer. It is not
// safe for concurrent use and is meant to be driven by a single
// coordinator goroutine
type Tracker struct {
	clock Clock

	// disconnectedWithLease holds clients that still have a valid
	// address lease but have disassociated at layer 2. They may come
	// back and reuse the address but are not reported as connected
	// until they do. Clients for which no link-layer information
	// exists (USB, bridged setups) never end up in here
	disconnectedWithLease map[string]struct{}

	// lastTypes remembers the sharing technology a client was last
	// seen with so presence-only clients keep their classification
	// after all of their leases are gone
	lastTypes map[string]client.Type

	lastStations []net.HardwareAddr
	lastClients  []client.Tethered
}

// New creates a Tracker using the system clock
func New() *Tracker {
	return NewWithClock(SystemClock())
}

// NewWithClock creates a Tracker with a custom time base
func NewWithClock(clock Clock) *Tracker {
	return &Tracker{
		clock:                 clock,
		disconnectedWithLease: make(map[string]struct{}),
		lastTypes:             make(map[string]client.Type),
	}
}

// UpdateConnectedClients recomputes the list of connected clients
// from the current lease lists of all sources and the given station
// list. A nil station list means "no link-layer information this
// cycle" and keeps the previously reported stations, while an empty
// list means nobody is associated. The returned slice is sorted by
// hardware address
func (t *Tracker) UpdateConnectedClients(sources []LeaseSource, stations []net.HardwareAddr) []client.Tethered {
	now := t.clock.Now()

	// collect every lease record that still carries at least one
	// unexpired address
	var validLeases []*client.Tethered
	for _, src := range sources {
		leases := src.AllLeases()
		for i := range leases {
			if remaining := remainingAddresses(&leases[i], now); remaining != nil {
				validLeases = append(validLeases, remaining)
			}
		}
	}

	var (
		current = macSet(stations)
		lost    = make(map[string]struct{})
	)

	if stations != nil {
		for mac := range macSet(t.lastStations) {
			if _, ok := current[mac]; !ok {
				lost[mac] = struct{}{}
			}
		}

		// keep our own copy, callers are free to reuse their slice
		t.lastStations = append([]net.HardwareAddr(nil), stations...)
	} else {
		current = macSet(t.lastStations)
	}

	leaseMacs := make(map[string]struct{}, len(validLeases))
	for _, l := range validLeases {
		leaseMacs[l.Key()] = struct{}{}
	}

	// a client is no longer "disconnected with a lease" once it
	// re-associates or all of its leases lapse
	for mac := range t.disconnectedWithLease {
		_, associated := current[mac]
		_, hasLease := leaseMacs[mac]

		if associated || !hasLease {
			delete(t.disconnectedWithLease, mac)
		}
	}

	// forget the remembered technology of clients that have neither a
	// lease nor a station entry left, the map must not grow for every
	// hardware address ever seen
	for mac := range t.lastTypes {
		_, associated := current[mac]
		_, hasLease := leaseMacs[mac]

		if !associated && !hasLease {
			delete(t.lastTypes, mac)
		}
	}

	clients := make(map[string]*client.Tethered)
	for _, leaseInfo := range validLeases {
		key := leaseInfo.Key()

		if _, ok := t.disconnectedWithLease[key]; ok {
			continue
		}

		if _, ok := lost[key]; ok {
			// the owner of this lease just disassociated
			t.disconnectedWithLease[key] = struct{}{}
			continue
		}

		if existing, ok := clients[key]; ok {
			// the same client got addresses from more than one
			// downstream. Aggregate the addresses, the first record
			// decides the sharing technology
			clients[key] = existing.MergeAddresses(leaseInfo)
		} else {
			clients[key] = leaseInfo.Clone()
		}

		t.lastTypes[key] = clients[key].Type
	}

	// stations without any known address are reported with an empty
	// address list and the technology they were last seen with
	for mac, hw := range current {
		if _, ok := clients[mac]; ok {
			continue
		}

		typ := client.TypeWifi
		if last, ok := t.lastTypes[mac]; ok {
			typ = last
		}

		clients[mac] = &client.Tethered{
			HwAddr:    hw,
			Addresses: []client.AddressInfo{},
			Type:      typ,
		}
	}

	result := make([]client.Tethered, 0, len(clients))
	for _, c := range clients {
		result = append(result, *c)
	}
	client.SortByHwAddr(result)

	t.lastClients = result

	return result
}

// LastClients returns the list computed by the most recent call to
// UpdateConnectedClients. Callers must not modify the returned slice
func (t *Tracker) LastClients() []client.Tethered {
	return t.lastClients
}

// remainingAddresses strips all addresses of c that expired at or
// before now. It returns nil when nothing survives
func remainingAddresses(c *client.Tethered, now time.Time) *client.Tethered {
	if len(c.Addresses) == 0 {
		return nil
	}

	expired := false
	for i := range c.Addresses {
		if c.Addresses[i].ExpiredAt(now) {
			expired = true
			break
		}
	}

	if !expired {
		return c
	}

	remaining := make([]client.AddressInfo, 0, len(c.Addresses)-1)
	for _, a := range c.Addresses {
		if !a.ExpiredAt(now) {
			remaining = append(remaining, a)
		}
	}

	if len(remaining) == 0 {
		return nil
	}

	return &client.Tethered{
		HwAddr:    c.HwAddr,
		Addresses: remaining,
		Type:      c.Type,
	}
}

func macSet(addrs []net.HardwareAddr) map[string]net.HardwareAddr {
	set := make(map[string]net.HardwareAddr, len(addrs))
	for _, a := range addrs {
		set[a.String()] = a
	}

	return set
}
