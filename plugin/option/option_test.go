package option

import (
	"context"
	"net"
	"testing"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/assert"

	"github.com/nexttether/nexttether/plugin/test"
)

func TestCustomOption(t *testing.T) {
	cases := []struct {
		Name    string
		Value   []string
		Code    uint8
		Payload []byte
		Err     bool
	}{
		{
			"0xaa",
			[]string{"0xaabbccdd", "0xeeff"},
			0xaa,
			[]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			false,
		},
		{
			"0x88",
			[]string{"fe"},
			0x88,
			[]byte{0xfe},
			false,
		},
		{
			"fo",
			nil,
			0,
			nil,
			true,
		},
		{
			"0xaa",
			[]string{"fae"},
			0xaa,
			nil,
			true,
		},
	}

	for idx, c := range cases {
		o, v, err := parseCustomOption(c.Name, c.Value)

		if err == nil {
			assert.Equal(t, c.Code, o.Code(), "case %d: code does not match", idx)
			assert.Equal(t, c.Payload, v.ToBytes(), "case %d: payload does not match", idx)
			assert.False(t, c.Err, "case %d: expected an error", idx)
		} else {
			assert.True(t, c.Err, "case %d: did not expect an error but got %s", idx, err.Error())
		}
	}
}

func TestSetupPlugin(t *testing.T) {
	cases := []struct {
		I string
		E bool
	}{
		{"option router 10.0.0.1", false},
		{"option nameserver 8.8.8.8 1.1.1.1", false},
		{`option {
			router 10.0.0.1
			domain-name example.local
		}`, false},
		{"option 0xaa 0xbbcc", false},
		{"option router", true},
		{"option what-is-this value", true},
	}

	for idx, c := range cases {
		ctrl := test.CreateTestBed(t, c.I)

		err := setupOption(ctrl)
		if c.E {
			assert.Error(t, err, "case %d", idx)
		} else {
			assert.NoError(t, err, "case %d", idx)
		}
	}
}

func TestServeDHCPSetsRequestedOptions(t *testing.T) {
	plg := &Plugin{
		Next: test.NoOpHandler,
		Options: map[dhcpv4.OptionCode]dhcpv4.OptionValue{
			dhcpv4.OptionRouter: dhcpv4.IP(net.IP{10, 0, 0, 1}),
		},
	}

	req, err := dhcpv4.New(dhcpv4.WithMessageType(dhcpv4.MessageTypeDiscover))
	assert.NoError(t, err)
	req.UpdateOption(dhcpv4.OptParameterRequestList(dhcpv4.OptionRouter))

	res, err := dhcpv4.NewReplyFromRequest(req)
	assert.NoError(t, err)

	assert.NoError(t, plg.ServeDHCP(context.Background(), req, res))
	assert.Equal(t, net.IP{10, 0, 0, 1}.To4(), net.IP(res.Options.Get(dhcpv4.OptionRouter)).To4())
}
