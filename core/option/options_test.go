package option

import (
	"testing"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKnown(t *testing.T) {
	code, val, err := ParseKnown("router", []string{"192.168.42.1"})
	require.NoError(t, err)
	assert.Equal(t, dhcpv4.OptionRouter, code)
	assert.Equal(t, "192.168.42.1", val.String())

	code, val, err = ParseKnown("nameserver", []string{"1.1.1.1", "8.8.8.8"})
	require.NoError(t, err)
	assert.Equal(t, dhcpv4.OptionDomainNameServer, code)
	assert.Equal(t, "1.1.1.1, 8.8.8.8", val.String())

	code, val, err = ParseKnown("domain-name", []string{"tether.local"})
	require.NoError(t, err)
	assert.Equal(t, dhcpv4.OptionDomainName, code)
	assert.Equal(t, "tether.local", val.String())

	_, _, err = ParseKnown("router", []string{"not-an-ip"})
	assert.Error(t, err)

	_, _, err = ParseKnown("domain-name", []string{"a", "b"})
	assert.Error(t, err)

	_, _, err = ParseKnown("no-such-option", []string{"x"})
	assert.Equal(t, ErrUnknownOption, err)
}

func TestCode(t *testing.T) {
	code, ok := Code("netmask")
	assert.True(t, ok)
	assert.Equal(t, dhcpv4.OptionSubnetMask, code)

	_, ok = Code("no-such-option")
	assert.False(t, ok)
}
