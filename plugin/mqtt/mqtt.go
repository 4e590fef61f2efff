// Package mqtt implements the mqtt directive that publishes client
// connect and disconnect notifications to one or more MQTT brokers.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/caddyserver/caddy"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/matcher"
)

type (
	// msgFactory creates the topic or payload of a notification
	// from the client event being published
	msgFactory func(event caddy.EventName, c *client.Tethered) (string, error)

	mqttConnConfig struct {
		broker       []string
		user         string
		password     string
		clientID     string
		cleanSession bool
		qos          int

		l sync.Mutex
		c mqtt.Client
	}

	mqttConfig struct {
		*matcher.Matcher

		conn    *mqttConnConfig
		name    string // optional name for the mqtt config
		topic   msgFactory
		payload msgFactory
	}

	mqttPlugin struct {
		configs []*mqttConfig
		l       log.Logger
	}
)

// Name returns "mqtt"
func (m *mqttPlugin) Name() string {
	return "mqtt"
}

// handleEvent publishes all matching notifications for the given
// client event. Publishing happens on dedicated goroutines so the
// event emitter is never blocked on broker I/O
func (m *mqttPlugin) handleEvent(event caddy.EventName, c *client.Tethered) error {
	for _, cfg := range m.configs {
		go m.publish(cfg, event, c.Clone())
	}

	return nil
}

func (m *mqttPlugin) publish(cfg *mqttConfig, event caddy.EventName, c *client.Tethered) {
	ctx := context.Background()

	match, err := cfg.Match(ctx, event, c)
	if err != nil {
		m.l.Errorf("matching failed for MQTT notification %q: %s", cfg.name, err.Error())
		return
	}

	if !match {
		return
	}

	cli, qos, err := m.getClient(cfg)
	if err != nil {
		m.l.Errorf("failed to get MQTT connection for %q: %s", cfg.name, err.Error())
		return
	}

	topic, err := cfg.topic(event, c)
	if err != nil {
		m.l.Errorf("failed to get MQTT topic for %q: %s", cfg.name, err.Error())
		return
	}

	payload, err := cfg.payload(event, c)
	if err != nil {
		m.l.Errorf("failed to get MQTT payload for %q: %s", cfg.name, err.Error())
		return
	}

	if token := cli.Publish(topic, byte(qos), false, payload); token.Wait() && token.Error() != nil {
		m.l.Errorf("failed to publish MQTT message for %q: %s", cfg.name, token.Error())
		return
	}

	m.l.Debugf("published MQTT message to topic %s", topic)
}

func (m *mqttPlugin) getClient(cfg *mqttConfig) (mqtt.Client, int, error) {
	// check if we should use a different configuration
	if cfg.name != "" && cfg.conn == nil {
		for _, c := range m.configs {
			if c.name == cfg.name && c.conn != nil {
				return m.getClient(c)
			}
		}
		return nil, 0, fmt.Errorf("MQTT configuration with name %q not found", cfg.name)
	}

	cfg.conn.l.Lock()
	defer cfg.conn.l.Unlock()

	if cfg.conn.c == nil {
		if err := cfg.conn.open(m.l); err != nil {
			return nil, 0, err
		}
	}

	return cfg.conn.c, cfg.conn.qos, nil
}

func (conn *mqttConnConfig) open(l log.Logger) error {
	opts := mqtt.NewClientOptions()

	for _, b := range conn.broker {
		opts.AddBroker(b)
	}

	if conn.user != "" {
		opts.SetUsername(conn.user)
	}

	if conn.password != "" {
		opts.SetPassword(conn.password)
	}

	if conn.cleanSession {
		opts.SetCleanSession(true)
	}

	if conn.clientID != "" {
		opts.SetClientID(conn.clientID)
	}

	opts.SetAutoReconnect(true)

	cli := mqtt.NewClient(opts)

	var servers []string
	for _, s := range opts.Servers {
		servers = append(servers, s.String())
	}

	l.Debugf("connecting to MQTT brokers at %s", strings.Join(servers, ", "))
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	l.Infof("connected to MQTT brokers at %s", strings.Join(servers, ", "))

	conn.c = cli

	return nil
}
