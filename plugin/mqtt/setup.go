package mqtt

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/matcher"
	"github.com/nexttether/nexttether/core/replacer"
)

var setupCount int

func init() {
	caddy.RegisterPlugin("mqtt", caddy.Plugin{
		ServerType: "tether",
		Action:     setupMqtt,
	})
}

func setupMqtt(c *caddy.Controller) error {
	plg := &mqttPlugin{}
	plg.l = log.GetLogger(c, plg)

	for c.Next() {
		cfg := &mqttConfig{}
		useExisting := false

		cond, err := matcher.SetupMatcherRemainingArgs(c)
		if err != nil {
			return err
		}
		cfg.Matcher = cond

		for c.NextBlock() {
			switch c.Val() {
			case "name", "broker", "user", "password",
				"clean-session", "qos":
				if useExisting {
					return c.SyntaxErr("either configure a new connection or \"use\" an existing one")
				}

				if err := parseConnectionSettings(cfg, c); err != nil {
					return err
				}

			case "use":
				if cfg.conn != nil {
					return c.SyntaxErr("either configure a new connection or \"use\" an existing one")
				}
				useExisting = true

				if !c.NextArg() {
					return c.ArgErr()
				}
				cfg.name = c.Val()

			case "topic":
				if !c.NextArg() {
					return c.ArgErr()
				}

				cfg.topic = getStringFactory(c.Val())

			case "payload", "body":
				if !c.NextArg() {
					return c.ArgErr()
				}

				cfg.payload = getStringFactory(c.Val())

			case "payload-from":
				cmd := c.RemainingArgs()
				if len(cmd) == 0 {
					return c.ArgErr()
				}

				cfg.payload = getExecCmdStringFactory(cmd)
			}
		}

		if !useExisting && cfg.conn == nil {
			return c.SyntaxErr("either configure a MQTT connection or \"use\" an existing one")
		}

		if cfg.topic == nil {
			return c.SyntaxErr("a topic is required for MQTT notifications")
		}

		if cfg.payload == nil {
			cfg.payload = getStringFactory("{event} {mac}")
		}

		plg.configs = append(plg.configs, cfg)
	}

	setupCount++
	events.RegisterClientEventHook(fmt.Sprintf("mqtt-%d-connect", setupCount), events.EventClientConnected, plg.handleEvent)
	events.RegisterClientEventHook(fmt.Sprintf("mqtt-%d-disconnect", setupCount), events.EventClientDisconnected, plg.handleEvent)

	return nil
}

func getStringFactory(s string) msgFactory {
	return func(event caddy.EventName, c *client.Tethered) (string, error) {
		rep := replacer.NewReplacer(context.Background(), event, c)
		return rep.Replace(s), nil
	}
}

func getExecCmdStringFactory(cmd []string) msgFactory {
	return func(event caddy.EventName, c *client.Tethered) (string, error) {
		args := make([]string, len(cmd))
		rep := replacer.NewReplacer(context.Background(), event, c)

		for i, c := range cmd {
			args[i] = rep.Replace(c)
		}

		output, err := exec.Command(args[0], args[1:]...).Output()
		return string(output), err
	}
}

func parseConnectionSettings(cfg *mqttConfig, c *caddy.Controller) error {
	if cfg.conn == nil {
		cfg.conn = &mqttConnConfig{}
	}

	action := c.Val()
	if action == "clean-session" {
		cfg.conn.cleanSession = true
		return nil
	}

	if !c.NextArg() {
		return c.ArgErr()
	}

	switch action {
	case "name":
		cfg.name = c.Val()
	case "broker":
		cfg.conn.broker = append([]string{c.Val()}, c.RemainingArgs()...)
	case "user":
		cfg.conn.user = c.Val()
	case "password":
		cfg.conn.password = c.Val()
	case "qos":
		i, err := strconv.Atoi(c.Val())
		if err != nil || i < 0 || i > 2 {
			return c.SyntaxErr("expected a number between 0 and 2")
		}
		cfg.conn.qos = i
	}

	return nil
}
