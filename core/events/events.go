package events

import (
	"github.com/apex/log"
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
)

const (
	// EventClientConnected is emitted when a new client shows up in
	// the connected clients list
	EventClientConnected caddy.EventName = "client-connected"

	// EventClientDisconnected is emitted when a client drops out of
	// the connected clients list
	EventClientDisconnected = "client-disconnected"

	// EventClientsChanged is emitted whenever the connected clients
	// list changes in any way. The event payload is the full list
	EventClientsChanged = "clients-changed"
)

type (
	// ClientEventHook is the function type that can receive per-client
	// connect and disconnect events
	ClientEventHook func(event caddy.EventName, c *client.Tethered) error

	// ClientListHook is the function type that can receive the full
	// connected clients list whenever it changes
	ClientListHook func(clients []client.Tethered) error
)

var (
	validClientEvents = map[caddy.EventName]struct{}{
		EventClientConnected:    {},
		EventClientDisconnected: {},
	}
)

// EmitClientEvent emits a per-client connect or disconnect event
func EmitClientEvent(event caddy.EventName, c *client.Tethered) {
	if _, ok := validClientEvents[event]; !ok {
		log.Errorf("refusing to emit invalid client event %q", event)
		return
	}

	caddy.EmitEvent(event, c)
}

// EmitClientsChanged emits the full connected clients list
func EmitClientsChanged(clients []client.Tethered) {
	caddy.EmitEvent(EventClientsChanged, clients)
}

// RegisterClientEventHook registers a new client event hook under the
// given unique name. The hook is only invoked for the event it has
// been registered for
func RegisterClientEventHook(name string, event caddy.EventName, hook ClientEventHook) {
	if _, ok := validClientEvents[event]; !ok {
		panic("invalid client event name")
	}

	caddy.RegisterEventHook(name, func(e caddy.EventName, value interface{}) error {
		if e != event {
			return nil
		}

		return hook(event, value.(*client.Tethered))
	})
}

// RegisterClientsChangedHook registers a new hook for the connected
// clients list under the given unique name
func RegisterClientsChangedHook(name string, hook ClientListHook) {
	caddy.RegisterEventHook(name, func(e caddy.EventName, value interface{}) error {
		if e != EventClientsChanged {
			return nil
		}

		return hook(value.([]client.Tethered))
	})
}
