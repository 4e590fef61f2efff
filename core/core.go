package core

import (
	// Plugin the tether server
	_ "github.com/nexttether/nexttether/core/tetherserver"

	// And the built-in lease databases
	_ "github.com/nexttether/nexttether/core/lease/builtin"
	_ "github.com/nexttether/nexttether/core/lease/storage/drivers"
)
