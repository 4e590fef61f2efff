package prometheus

import (
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
)

// Name returns "prometheus"
func (p *Plugin) Name() string {
	return "prometheus"
}

func (p *Plugin) handleEvent(event caddy.EventName, c *client.Tethered) error {
	switch event {
	case events.EventClientConnected:
		clientConnects.WithLabelValues(c.Type.String()).Inc()
	case events.EventClientDisconnected:
		clientDisconnects.WithLabelValues(c.Type.String()).Inc()
	}

	return nil
}

func (p *Plugin) handleClientsChanged(clients []client.Tethered) error {
	counts := make(map[string]int)
	for idx := range clients {
		counts[clients[idx].Type.String()]++
	}

	connectedClients.Reset()
	for name, count := range counts {
		connectedClients.WithLabelValues(name).Set(float64(count))
	}

	return nil
}
