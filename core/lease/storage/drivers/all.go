// Package drivers pulls in all built-in lease storage drivers
package drivers

import (
	// all built-in storage drivers
	_ "github.com/nexttether/nexttether/core/lease/storage/drivers/bolt"
	_ "github.com/nexttether/nexttether/core/lease/storage/drivers/memory"
)
