package tetherserver

// Directives that we register at caddy. The order defines the order
// of the middleware chain
var Directives = []string{
	"log",
	"database",
	"interface",
	"type",
	"presence",
	"gotify",
	"mqtt",
	"prometheus",
	"lua",
	"option",
	"lease",
	"static",
	"range",
}
