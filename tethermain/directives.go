package tethermain

import (
	// Include the tether server type, the built-in lease databases
	// and all directives
	_ "github.com/nexttether/nexttether/core"
	_ "github.com/nexttether/nexttether/plugin/database"
	_ "github.com/nexttether/nexttether/plugin/gotify"
	_ "github.com/nexttether/nexttether/plugin/ifname"
	_ "github.com/nexttether/nexttether/plugin/lease"
	_ "github.com/nexttether/nexttether/plugin/linktype"
	_ "github.com/nexttether/nexttether/plugin/log"
	_ "github.com/nexttether/nexttether/plugin/lua"
	_ "github.com/nexttether/nexttether/plugin/mqtt"
	_ "github.com/nexttether/nexttether/plugin/option"
	_ "github.com/nexttether/nexttether/plugin/presence"
	_ "github.com/nexttether/nexttether/plugin/prometheus"
	_ "github.com/nexttether/nexttether/plugin/ranges"
	_ "github.com/nexttether/nexttether/plugin/static"
)
