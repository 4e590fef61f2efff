package builtin

import "github.com/nexttether/nexttether/core/lease"

func factory(opts map[string][]string) (lease.Database, error) {
	return New(), nil
}

func init() {
	// the builtin database serves as the default driver
	lease.MustRegisterDriver("", factory)
	lease.MustRegisterDriver("builtin", factory)
}
