package client

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"
)

// Type describes the technology used to share connectivity
// with a downstream client
type Type uint8

// All supported sharing technologies
const (
	TypeWifi Type = iota
	TypeUSB
	TypeBluetooth
	TypeEthernet
	TypeNCM
)

var typeNames = map[Type]string{
	TypeWifi:      "wifi",
	TypeUSB:       "usb",
	TypeBluetooth: "bluetooth",
	TypeEthernet:  "ethernet",
	TypeNCM:       "ncm",
}

// String implements fmt.Stringer
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// ParseType parses the string representation of a sharing
// technology
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == strings.ToLower(s) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown tethering type %q", s)
}

// AddressInfo describes an address that has been leased to a
// tethered client
type AddressInfo struct {
	// Address holds the leased IP address
	Address net.IP

	// Hostname may hold the hostname as reported by the client
	Hostname string

	// Expires holds the timestamp when the address lease is going
	// to expire
	Expires time.Time
}

// ExpiredAt returns true if the address lease was or will be expired
// at t. A lease expiring exactly at t counts as expired
func (a *AddressInfo) ExpiredAt(t time.Time) bool {
	return !a.Expires.After(t)
}

// Clone returns a deep copy of the address info
func (a *AddressInfo) Clone() AddressInfo {
	return AddressInfo{
		Address:  append(net.IP{}, a.Address...),
		Hostname: a.Hostname,
		Expires:  a.Expires,
	}
}

// Tethered represents a client that is connected to one of the
// shared downstream networks. Clients are identified by their
// hardware address only, all other fields are informational
type Tethered struct {
	// HwAddr is the hardware address of the client
	HwAddr net.HardwareAddr

	// Addresses holds all addresses currently leased to the client
	Addresses []AddressInfo

	// Type is the sharing technology the client is connected
	// through
	Type Type
}

// Key returns the deduplication key for the client
func (c *Tethered) Key() string {
	return c.HwAddr.String()
}

// String implements fmt.Stringer
func (c *Tethered) String() string {
	addrs := make([]string, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addrs = append(addrs, a.Address.String())
	}

	return fmt.Sprintf("%s (%s; %s)", c.HwAddr, c.Type, strings.Join(addrs, ", "))
}

// Clone returns a deep copy of the client
func (c *Tethered) Clone() *Tethered {
	addrs := make([]AddressInfo, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		addrs = append(addrs, a.Clone())
	}

	return &Tethered{
		HwAddr:    append(net.HardwareAddr{}, c.HwAddr...),
		Addresses: addrs,
		Type:      c.Type,
	}
}

// MergeAddresses returns a new client carrying the union of the
// address lists of c and other. The hardware address and sharing
// technology of c win
func (c *Tethered) MergeAddresses(other *Tethered) *Tethered {
	merged := c.Clone()
	for _, a := range other.Addresses {
		merged.Addresses = append(merged.Addresses, a.Clone())
	}

	return merged
}

// Hostname returns the first non-empty hostname reported by one of
// the client's address leases
func (c *Tethered) Hostname() string {
	for _, a := range c.Addresses {
		if a.Hostname != "" {
			return a.Hostname
		}
	}

	return ""
}

// SortByHwAddr sorts clients in-place by their hardware address.
// Useful for stable comparisons
func SortByHwAddr(clients []Tethered) {
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].HwAddr.String() < clients[j].HwAddr.String()
	})
}
