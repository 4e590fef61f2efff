package events

import (
	"net"
	"sync"
	"testing"

	"github.com/caddyserver/caddy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexttether/nexttether/core/client"
)

var eventHooks = &sync.Map{}

func init() {
	caddy.RegisterEventHook("event-testing-hook", func(name caddy.EventName, info interface{}) error {
		eventHooks.Range(func(_, value interface{}) bool {
			err := value.(caddy.EventHook)(name, info)
			if err != nil {
				return false
			}
			return false
		})

		return nil
	})
}

func registerTestingHook(name string, hook caddy.EventHook) {
	eventHooks.LoadOrStore(name, hook)
}

func removeTestingHook(name string) {
	eventHooks.Delete(name)
}

func TestEmitClientEvent(t *testing.T) {
	c := client.Tethered{
		HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Type:   client.TypeWifi,
	}

	firedConnected := false
	registerTestingHook("test-emit-client-event", func(name caddy.EventName, info interface{}) error {
		firedConnected = true
		assert.Equal(t, EventClientConnected, name)

		cp, ok := info.(*client.Tethered)
		require.True(t, ok)
		assert.Equal(t, &c, cp)

		return nil
	})
	defer removeTestingHook("test-emit-client-event")

	EmitClientEvent(EventClientConnected, &c)
	assert.True(t, firedConnected)
}

func TestEmitClientEvent_invalid_name(t *testing.T) {
	eventFired := false
	registerTestingHook("test-emit-client-event-invalid-name", func(name caddy.EventName, info interface{}) error {
		eventFired = true
		return nil
	})
	defer removeTestingHook("test-emit-client-event-invalid-name")

	EmitClientEvent("invalid-name", nil)

	assert.False(t, eventFired)
}

func TestRegisterClientEventHook(t *testing.T) {
	called := false
	RegisterClientEventHook("test-register-hook", EventClientConnected, func(e caddy.EventName, c *client.Tethered) error {
		called = true
		return nil
	})

	caddy.EmitEvent("some-other-event", nil)
	assert.False(t, called, "should have been filtered")

	caddy.EmitEvent(EventClientDisconnected, &client.Tethered{})
	assert.False(t, called, "should have been filtered")

	caddy.EmitEvent(EventClientConnected, &client.Tethered{})
	assert.True(t, called, "should have been emitted")
}

func TestRegisterClientEventHook_panic(t *testing.T) {
	assert.Panics(t, func() {
		RegisterClientEventHook("should-panic-hook", "invalid-event-type", nil)
	})
}

func TestRegisterClientsChangedHook(t *testing.T) {
	var got []client.Tethered
	RegisterClientsChangedHook("test-clients-changed-hook", func(clients []client.Tethered) error {
		got = clients
		return nil
	})

	list := []client.Tethered{
		{HwAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
	}

	EmitClientsChanged(list)
	assert.Equal(t, list, got)
}
