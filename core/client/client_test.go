package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	assert.Equal(t, "wifi", TypeWifi.String())
	assert.Equal(t, "usb", TypeUSB.String())
	assert.Equal(t, "bluetooth", TypeBluetooth.String())

	parsed, err := ParseType("USB")
	require.NoError(t, err)
	assert.Equal(t, TypeUSB, parsed)

	_, err = ParseType("carrier-pigeon")
	assert.Error(t, err)
}

func TestAddressInfoExpiredAt(t *testing.T) {
	now := time.Now()
	a := AddressInfo{
		Address: net.IP{192, 168, 43, 10},
		Expires: now.Add(time.Minute),
	}

	assert.False(t, a.ExpiredAt(now))
	assert.True(t, a.ExpiredAt(now.Add(time.Hour)))

	// a lease expiring exactly now counts as expired
	assert.True(t, a.ExpiredAt(now.Add(time.Minute)))
}

func TestTetheredClone(t *testing.T) {
	c := Tethered{
		HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Addresses: []AddressInfo{
			{
				Address:  net.IP{192, 168, 43, 10},
				Hostname: "phone",
				Expires:  time.Now().Add(time.Minute),
			},
		},
		Type: TypeWifi,
	}

	clone := c.Clone()
	assert.Equal(t, &c, clone)

	clone.HwAddr[0] = 0x00
	clone.Addresses[0].Address[0] = 10
	assert.NotEqual(t, c.HwAddr, clone.HwAddr)
	assert.NotEqual(t, c.Addresses[0].Address, clone.Addresses[0].Address)
}

func TestTetheredMergeAddresses(t *testing.T) {
	expires := time.Now().Add(time.Minute)
	c1 := Tethered{
		HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Addresses: []AddressInfo{
			{Address: net.IP{192, 168, 43, 10}, Expires: expires},
		},
		Type: TypeWifi,
	}
	c2 := Tethered{
		HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Addresses: []AddressInfo{
			{Address: net.IP{192, 168, 44, 10}, Hostname: "phone", Expires: expires},
		},
		Type: TypeUSB,
	}

	merged := c1.MergeAddresses(&c2)
	require.Len(t, merged.Addresses, 2)

	// the receiver's tethering type wins
	assert.Equal(t, TypeWifi, merged.Type)
	assert.Equal(t, "phone", merged.Hostname())
}
