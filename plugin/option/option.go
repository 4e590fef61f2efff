// Package option implements the option directive that allows arbitrary
// DHCP options to be served to downstream clients.
package option

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/insomniacslk/dhcp/dhcpv4"

	"github.com/nexttether/nexttether/core/option"
	"github.com/nexttether/nexttether/core/tetherserver"
	"github.com/nexttether/nexttether/plugin"
)

// Plugin allows to configure and set arbitrary DHCP
// options. It implements the plugin.Handler interface
type Plugin struct {
	Next    plugin.Handler
	Options map[dhcpv4.OptionCode]dhcpv4.OptionValue
}

// Name implements the plugin.Handler interface and returns "option"
func (p *Plugin) Name() string {
	return "option"
}

// ServeDHCP implements the plugin.Handler interface and will add all configured DHCP options
// if they are requested
func (p *Plugin) ServeDHCP(ctx context.Context, req, res *dhcpv4.DHCPv4) error {
	if tetherserver.Discover(req) || tetherserver.Request(req) {
		for code, value := range p.Options {
			if req.IsOptionRequested(code) {
				res.UpdateOption(dhcpv4.OptGeneric(code, value.ToBytes()))
			}
		}
	}

	return p.Next.ServeDHCP(ctx, req, res)
}

func (p *Plugin) parseOption(name string, values []string) error {
	c, v, err := ParseKnownOption(name, values)
	if err != nil {
		return err
	}

	p.Options[c] = v

	return nil
}

// ParseKnownOption parses the option with the given name and values. If
// name is not a known option name it may be a hex encoded option code
// like 0xaa with hex encoded payload values.
func ParseKnownOption(name string, values []string) (dhcpv4.OptionCode, dhcpv4.OptionValue, error) {
	c, v, err := option.ParseKnown(name, values)
	if err == nil {
		return c, v, nil
	}

	if errors.Is(err, option.ErrUnknownOption) {
		return parseCustomOption(name, values)
	}

	return nil, nil, err
}

func parseCustomOption(name string, values []string) (dhcpv4.OptionCode, dhcpv4.OptionValue, error) {
	if !strings.HasPrefix(name, "0x") {
		return nil, nil, fmt.Errorf("unknown option: %s", name)
	}

	code, err := strconv.ParseUint(strings.TrimPrefix(name, "0x"), 16, 8)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid option code %s: %w", name, err)
	}

	var payload []byte
	for _, v := range values {
		b, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid option value %s: %w", v, err)
		}

		payload = append(payload, b...)
	}

	return dhcpv4.GenericOptionCode(code), dhcpv4.OptionGeneric{Data: payload}, nil
}
