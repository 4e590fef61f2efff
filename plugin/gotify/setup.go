package gotify

import (
	"context"
	"fmt"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/matcher"
	"github.com/nexttether/nexttether/core/replacer"
)

var setupCount int

func init() {
	caddy.RegisterPlugin("gotify", caddy.Plugin{
		ServerType: "tether",
		Action:     setupGotify,
	})
}

func setupGotify(c *caddy.Controller) error {
	plg, err := makeGotifyPlugin(c)
	if err != nil {
		return err
	}

	setupCount++
	events.RegisterClientEventHook(fmt.Sprintf("gotify-%d-connect", setupCount), events.EventClientConnected, plg.handleEvent)
	events.RegisterClientEventHook(fmt.Sprintf("gotify-%d-disconnect", setupCount), events.EventClientDisconnected, plg.handleEvent)

	return nil
}

func makeGotifyPlugin(c *caddy.Controller) (*gotifyPlugin, error) {
	plg := &gotifyPlugin{}
	plg.l = log.GetLogger(c, plg)

	for c.Next() {
		m, err := matcher.SetupMatcherRemainingArgs(c)
		if err != nil {
			return nil, err
		}

		n := &notification{
			Matcher: m,
		}

		// server and token configurations propagate to notifications
		// defined below them
		if srv, token, ok := plg.findLastCreds(); ok {
			n.srv = srv
			n.token = token
		}

		for c.NextBlock() {
			switch c.Val() {
			case "message", "body":
				if !c.NextArg() {
					return nil, c.ArgErr()
				}
				n.msg = getStringFactory(c.Val())

			case "title":
				if !c.NextArg() {
					return nil, c.ArgErr()
				}
				n.title = getStringFactory(c.Val())

			case "server":
				if !c.NextArg() {
					return nil, c.ArgErr()
				}
				n.srv = c.Val()

				if !c.NextArg() {
					return nil, c.ArgErr()
				}
				n.token = c.Val()

			default:
				return nil, c.SyntaxErr("unexpected keyword " + c.Val())
			}
		}

		if n.msg == nil && !n.Matcher.Empty() {
			return nil, c.SyntaxErr("a message is required when a condition is configured")
		}

		plg.addNotification(n)
	}

	return plg, nil
}

func getStringFactory(s string) msgFactory {
	return func(event caddy.EventName, c *client.Tethered) (string, error) {
		rep := replacer.NewReplacer(context.Background(), event, c)
		return rep.Replace(s), nil
	}
}
