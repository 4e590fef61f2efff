package matcher

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/caddyserver/caddy"
	"github.com/caddyserver/caddy/caddyfile"
	"github.com/stretchr/testify/assert"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
)

func TestSetupMatcher(t *testing.T) {
	testCases := []struct {
		input       string
		ifOp        string
		expectedErr bool
	}{
		{
			"type == 'wifi'",
			"and",
			false,
		},
		{
			"",
			"or",
			false,
		},
		{
			"==",
			"",
			true,
		},
	}

	for i, c := range testCases {
		testCase := fmt.Sprintf("case #%d", i+1)
		input := fmt.Sprintf("{\nif %s\nif_op %s\n}", c.input, c.ifOp)
		disp := caddyfile.NewDispenser(testCase, bytes.NewBufferString(input))
		m, err := SetupMatcher(&caddy.Controller{Dispenser: disp})
		if c.expectedErr {
			assert.Error(t, err, testCase)
			assert.Nil(t, m, testCase)
		} else {
			assert.NoError(t, err, testCase)
			assert.NotNil(t, m, testCase)
		}
	}
}

func TestMatcherWithFunctions(t *testing.T) {
	input := "match testFunc(\"arg1\")"
	disp := caddyfile.NewDispenser("test", bytes.NewBufferString(input))
	disp.Next()

	fns := map[string]ExprFunc{
		"testFunc": func(args ...interface{}) (interface{}, error) {
			assert.Equal(t, "arg1", args[0])

			return true, nil
		},
	}

	m, err := SetupMatcherRemainingArgs(&caddy.Controller{Dispenser: disp}, fns)
	assert.NoError(t, err)
	assert.NotNil(t, m)
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	c := &client.Tethered{
		HwAddr: net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02},
		Type:   client.TypeWifi,
		Addresses: []client.AddressInfo{
			{Address: net.IP{192, 168, 42, 10}, Hostname: "phone", Expires: time.Now().Add(time.Minute)},
		},
	}

	cases := []struct {
		I string
		R bool
		E bool
	}{
		{
			I: "true",
			R: true,
			E: false,
		},
		{
			I: "false",
			R: false,
			E: false,
		},
		{
			I: "1 == 2",
			R: false,
			E: false,
		},
		{
			I: "type == 'wifi'",
			R: true,
		},
		{
			I: "type == 'usb'",
			R: false,
		},
		{
			I: "mac == 'de:ad:be:ef:01:02'",
			R: true,
		},
		{
			I: "hostname == 'phone' && numaddrs > 0",
			R: true,
		},
		{
			I: "event == 'client-connected'",
			R: true,
		},
		{
			I: "event == 'client-disconnected'",
			R: false,
		},
	}

	for i, tc := range cases {
		m, err := SetupMatcherString(tc.I)
		assert.NoError(t, err)

		res, err := m.Match(ctx, events.EventClientConnected, c)
		if tc.E == false {
			assert.Equal(t, tc.R, res, "case %d: %s", i, tc.I)
			assert.NoError(t, err, "case %d: %s", i, tc.I)
		} else {
			assert.Error(t, err, "case %d: %s", i, tc.I)
		}
	}
}

func TestMatcher_Empty(t *testing.T) {
	m, err := SetupMatcherString("")
	assert.NoError(t, err)
	assert.True(t, m.Empty())

	ok, err := m.Match(context.Background(), events.EventClientConnected, &client.Tethered{})
	assert.NoError(t, err)
	assert.True(t, ok)
}
