// Package gotify implements the gotify directive that pushes client
// connect and disconnect notifications to a gotify server.
package gotify

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/caddyserver/caddy"
	"github.com/gotify/go-api-client/v2/auth"
	"github.com/gotify/go-api-client/v2/client/message"
	"github.com/gotify/go-api-client/v2/gotify"
	"github.com/gotify/go-api-client/v2/models"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/matcher"
)

type (
	// msgFactory creates the gotify notification title or body
	// from the client event being published
	msgFactory func(event caddy.EventName, c *client.Tethered) (string, error)

	// gotifyPlugin matches client events against a set of conditions
	// and sends notifications
	gotifyPlugin struct {
		notifications []*notification
		l             log.Logger
		wg            sync.WaitGroup
	}

	// notification combines the matcher (condition) and a message
	// factory for a gotify notification
	notification struct {
		*matcher.Matcher
		msg   msgFactory
		title msgFactory
		srv   string
		token string
	}
)

// notify sends the prepared message to the gotify server. It is a
// package level variable so tests can intercept it
var notify = func(srv *url.URL, token string, msg *message.CreateMessageParams) error {
	cli := gotify.NewClient(srv, &http.Client{})

	_, err := cli.Message.CreateMessage(msg, auth.TokenAuth(token))
	return err
}

// Prepare checks if we should send a notification for the given client
// event and returns the title and message body. An empty message body
// indicates that no notification should be sent
func (n *notification) Prepare(event caddy.EventName, c *client.Tethered) (string, string, error) {
	if n.msg == nil {
		return "", "", nil
	}

	matched, err := n.Match(context.Background(), event, c)
	if err != nil {
		return "", "", err
	}

	if matched {
		msg, err := n.msg(event, c)
		if err != nil {
			return "", "", err
		}

		var title string

		if n.title != nil {
			title, _ = n.title(event, c)
		}

		if title == "" {
			title = "NextTether"
		}

		return title, msg, nil
	}

	return "", "", nil
}

func (n *notification) Send(title, msg string) error {
	gotifyURL, err := url.Parse(n.srv)
	if err != nil {
		return err
	}

	params := message.NewCreateMessageParams()
	params.Body = &models.MessageExternal{
		Title:    title,
		Message:  msg,
		Priority: 5,
	}

	return notify(gotifyURL, n.token, params)
}

// addNotification adds a new notification to the gotify plugin
func (g *gotifyPlugin) addNotification(n *notification) {
	g.notifications = append(g.notifications, n)
}

// findLastCreds returns the last credentials used for a notification
func (g *gotifyPlugin) findLastCreds() (string, string, bool) {
	if len(g.notifications) == 0 {
		return "", "", false
	}

	last := g.notifications[len(g.notifications)-1]
	return last.srv, last.token, true
}

// Name returns "gotify"
func (g *gotifyPlugin) Name() string {
	return "gotify"
}

// handleEvent checks if we should send notifications for the given
// client event. Notifications are sent on dedicated go routines
func (g *gotifyPlugin) handleEvent(event caddy.EventName, c *client.Tethered) error {
	for _, n := range g.notifications {
		g.wg.Add(1)

		go func(n *notification, c *client.Tethered) {
			defer g.wg.Done()

			title, body, err := n.Prepare(event, c)
			if err != nil {
				g.l.Warnf("failed to prepare notification: %s", err.Error())
				return
			}

			if body != "" {
				g.l.Debugf("sending notification: %s\n%s", title, body)

				if err := n.Send(title, body); err != nil {
					g.l.Warnf("failed to send notification: %s", err.Error())
				} else {
					g.l.Debugf("notification sent via %s: %s\n%s", n.srv, title, body)
				}
			}
		}(n, c.Clone())
	}

	return nil
}
