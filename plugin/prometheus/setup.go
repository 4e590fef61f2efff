package prometheus

import (
	"fmt"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/events"
)

var setupCount int

func init() {
	caddy.RegisterPlugin("prometheus", caddy.Plugin{
		ServerType: "tether",
		Action:     setupPrometheus,
	})
}

// Plugin exposes connected client metrics to prometheus
type Plugin struct {
	Metrics *Metrics
}

func setupPrometheus(c *caddy.Controller) error {
	metrics, err := parse(c)
	if err != nil {
		return err
	}

	err = metrics.start()
	if err != nil {
		return err
	}

	plg := &Plugin{Metrics: metrics}

	setupCount++
	events.RegisterClientEventHook(fmt.Sprintf("prometheus-%d-connect", setupCount), events.EventClientConnected, plg.handleEvent)
	events.RegisterClientEventHook(fmt.Sprintf("prometheus-%d-disconnect", setupCount), events.EventClientDisconnected, plg.handleEvent)
	events.RegisterClientsChangedHook(fmt.Sprintf("prometheus-%d-clients", setupCount), plg.handleClientsChanged)

	return nil
}

// prometheus {
//	address localhost:9180
// }
// Or just: prometheus localhost:9180
func parse(c *caddy.Controller) (*Metrics, error) {
	var metrics *Metrics

	for c.Next() {
		if metrics != nil {
			return nil, c.Err("prometheus: can only have one metrics module per server")
		}

		args := c.RemainingArgs()
		metrics = NewMetrics("", "")
		switch len(args) {
		case 0:
		case 1:
			metrics.addr = args[0]
		default:
			return nil, c.ArgErr()
		}
		for c.NextBlock() {
			switch c.Val() {
			case "path":
				args = c.RemainingArgs()
				if len(args) != 1 {
					return nil, c.ArgErr()
				}
				metrics.path = args[0]
			case "address":
				args = c.RemainingArgs()
				if len(args) != 1 {
					return nil, c.ArgErr()
				}
				metrics.addr = args[0]
			default:
				return nil, c.Errf("prometheus: unknown item: %s", c.Val())
			}
		}
	}

	return metrics, nil
}
