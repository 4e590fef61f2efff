package tetherserver

import (
	"strings"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/utils/iface"
)

func findInterface(cfg *Config) bool {
	if cfg.Interface.Name != "" && len(cfg.Interface.HardwareAddr) > 0 {
		return true
	}

	netIface, err := iface.ByIP(cfg.IP)
	if err != nil {
		return false
	}

	cfg.Interface = *netIface
	return true
}

// tryInterfaceNameOrIP parses value either as a CIDR subnet notation
// or as the name of a network interface and fills the IP and Network
// fields of cfg
func tryInterfaceNameOrIP(value string, cfg *Config) error {
	ip, ipNet, err := iface.ByNameOrCIDR(value)
	if err != nil {
		return err
	}

	cfg.IP = ip
	cfg.Network = *ipNet

	return nil
}

// inferType guesses the sharing technology of a downstream from its
// interface name
func inferType(ifaceName string) client.Type {
	name := strings.ToLower(ifaceName)

	switch {
	case strings.HasPrefix(name, "wl"), strings.HasPrefix(name, "ap"):
		return client.TypeWifi
	case strings.HasPrefix(name, "usb"), strings.HasPrefix(name, "rndis"):
		return client.TypeUSB
	case strings.HasPrefix(name, "bnep"), strings.HasPrefix(name, "bt"):
		return client.TypeBluetooth
	case strings.HasPrefix(name, "ncm"):
		return client.TypeNCM
	}

	return client.TypeEthernet
}
