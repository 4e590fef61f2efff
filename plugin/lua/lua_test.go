package lua

import (
	"bytes"
	"net"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
)

func testClient() *client.Tethered {
	return &client.Tethered{
		HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Type:   client.TypeWifi,
		Addresses: []client.AddressInfo{
			{
				Address:  net.IP{192, 168, 0, 10},
				Hostname: "phone",
			},
		},
	}
}

func TestNewFromReader(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p, err := newFromReader(bytes.NewBufferString(`
		settings = {
			queue_size = 16
		}

		function onconnect(client)
		end
		`), "test")

		require.NoError(t, err)
		require.NotNil(t, p)
		defer p.vm.Close()

		assert.Equal(t, 16, cap(p.queue))
	})

	t.Run("syntax error", func(t *testing.T) {
		p, err := newFromReader(bytes.NewBufferString(`{)`), "test")
		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("runtime error", func(t *testing.T) {
		p, err := newFromReader(bytes.NewBufferString(`nonExistingMethodCall()`), "test")
		assert.Error(t, err)
		assert.Nil(t, p)
	})
}

func TestDispatch(t *testing.T) {
	p, err := newFromReader(bytes.NewBufferString(`
	connected = {}
	disconnected = {}

	function onconnect(client)
		table.insert(connected, client.mac)
	end

	function ondisconnect(client)
		table.insert(disconnected, client.hostname)
	end
	`), "test")

	require.NoError(t, err)
	defer p.vm.Close()
	p.l = log.Log

	p.dispatch(luaEvent{event: events.EventClientConnected, c: testClient()})
	p.dispatch(luaEvent{event: events.EventClientConnected, c: testClient()})
	p.dispatch(luaEvent{event: events.EventClientDisconnected, c: testClient()})

	connected := p.vm.GetGlobal("connected").(*lua.LTable)
	assert.Equal(t, 2, connected.Len())
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", lua.LVAsString(connected.RawGetInt(1)))

	disconnected := p.vm.GetGlobal("disconnected").(*lua.LTable)
	assert.Equal(t, 1, disconnected.Len())
	assert.Equal(t, "phone", lua.LVAsString(disconnected.RawGetInt(1)))
}

func TestEventLoop(t *testing.T) {
	p, err := newFromReader(bytes.NewBufferString(`
	count = 0

	function onconnect(client)
		count = count + 1
	end
	`), "test")

	require.NoError(t, err)
	p.l = log.Log
	p.start()

	assert.NoError(t, p.handleEvent(events.EventClientConnected, testClient()))
	assert.NoError(t, p.handleEvent(events.EventClientConnected, testClient()))
	assert.NoError(t, p.close())
}

func TestEventAfterClose(t *testing.T) {
	p, err := newFromReader(bytes.NewBufferString(`
	function onconnect(client)
	end
	`), "test")

	require.NoError(t, err)
	p.l = log.Log
	p.start()
	require.NoError(t, p.close())

	// event hooks may still fire while the instance shuts down
	assert.NotPanics(t, func() {
		assert.NoError(t, p.handleEvent(events.EventClientConnected, testClient()))
	})

	// closing again is a no-op
	assert.NoError(t, p.close())
}
