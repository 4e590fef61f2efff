package ranges

import (
	"context"
	"net"
	"testing"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexttether/nexttether/core/lease"
	"github.com/nexttether/nexttether/core/lease/builtin"
	"github.com/nexttether/nexttether/core/lease/iprange"
	"github.com/nexttether/nexttether/plugin/test"
)

func TestRangeSetup(t *testing.T) {
	c := test.CreateTestBed(t, "range 10.0.0.100 10.0.0.200")
	assert.NoError(t, setupRange(c))

	c = test.CreateTestBed(t, "range 10.0.0.100")
	assert.Error(t, setupRange(c))

	c = test.CreateTestBed(t, "range 10.0.0.100 not-an-ip")
	assert.Error(t, setupRange(c))

	c = test.CreateTestBed(t, "range not-an-ip 10.0.0.200")
	assert.Error(t, setupRange(c))
}

func testPlugin() *rangePlugin {
	return &rangePlugin{
		next: test.NoOpHandler,
		ranges: iprange.IPRanges{
			{
				Start: net.IP{10, 0, 0, 100},
				End:   net.IP{10, 0, 0, 110},
			},
		},
	}
}

func TestRangeServeDHCPDiscover(t *testing.T) {
	plg := testPlugin()
	ctx := lease.WithDatabase(context.Background(), builtin.New())

	req, err := dhcpv4.New(dhcpv4.WithMessageType(dhcpv4.MessageTypeDiscover))
	require.NoError(t, err)
	req.ClientHWAddr = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	res, err := dhcpv4.NewReplyFromRequest(req)
	require.NoError(t, err)

	assert.NoError(t, plg.ServeDHCP(ctx, req, res))
	assert.True(t, net.IP{10, 0, 0, 100}.Equal(res.YourIPAddr))
}

func TestRangeServeDHCPRequest(t *testing.T) {
	plg := testPlugin()
	db := builtin.New()
	ctx := lease.WithDatabase(context.Background(), db)

	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	require.NoError(t, db.Reserve(ctx, net.IP{10, 0, 0, 100}, lease.Client{HwAddr: mac, ID: mac.String()}))

	req, err := dhcpv4.New(dhcpv4.WithMessageType(dhcpv4.MessageTypeRequest))
	require.NoError(t, err)
	req.ClientHWAddr = mac
	req.UpdateOption(dhcpv4.OptRequestedIPAddress(net.IP{10, 0, 0, 100}))

	res, err := dhcpv4.NewReplyFromRequest(req)
	require.NoError(t, err)

	assert.NoError(t, plg.ServeDHCP(ctx, req, res))
	assert.Equal(t, dhcpv4.MessageTypeAck, res.MessageType())
}
