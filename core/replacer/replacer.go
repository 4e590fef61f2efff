// Package replacer replaces placeholders in template strings with
// values derived from a client event. It is used by notification
// plugins to render configurable messages
package replacer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
)

type (
	// Replacer is capable of replacing variables in a template string
	Replacer interface {
		// Replace replaces all variables in string and returns the result
		Replace(string) string

		// Set adds a custom replacement value
		Set(key string, value Value)

		// Get returns the replacement value for key
		Get(key string) string
	}

	// Value is a getter for string representations of client event
	// fields
	Value interface {
		// Get returns the string representation for the given event
		// and client
		Get(event caddy.EventName, c *client.Tethered) string
	}

	// ValueGetter implements the Value interface and returns a string
	// based on the provided client event
	ValueGetter func(event caddy.EventName, c *client.Tethered) string

	// StringValue is a utility method to use string constants for
	// the Value interface
	StringValue string

	// CtxKey is used to store a replacer instance in a context value
	CtxKey struct{}

	replacer struct {
		event              caddy.EventName
		client             *client.Tethered
		customReplacements map[string]Value // a list of custom replacements configured via Set
	}
)

// Get implements the Value interface and calls g itself
func (g ValueGetter) Get(event caddy.EventName, c *client.Tethered) string {
	return g(event, c)
}

// Get implements the Value interface and returns s itself
func (s StringValue) Get(_ caddy.EventName, _ *client.Tethered) string {
	return string(s)
}

// WithReplacer returns a new context with a replacer instance
func WithReplacer(ctx context.Context, r Replacer) context.Context {
	return context.WithValue(ctx, CtxKey{}, r)
}

// GetReplacer returns the replacer associated with ctx
func GetReplacer(ctx context.Context) Replacer {
	v := ctx.Value(CtxKey{})
	if v == nil {
		return nil
	}

	r, ok := v.(Replacer)
	if !ok {
		panic("replacer.CtxKey used for a none replacer type")
	}
	return r
}

// NewReplacer returns a new replacer instance for the given client
// event
func NewReplacer(ctx context.Context, event caddy.EventName, c *client.Tethered) Replacer {
	if parent := GetReplacer(ctx); parent != nil {
		return parent
	}

	return &replacer{
		event:              event,
		client:             c,
		customReplacements: make(map[string]Value),
	}
}

func (r *replacer) Set(key string, val Value) {
	r.customReplacements[key] = val
}

func (r *replacer) Get(key string) string {
	// try custom replacements first
	val, ok := r.customReplacements[key]
	if ok {
		return val.Get(r.event, r.client)
	}

	if r.client == nil {
		return ""
	}

	// try built-in keys next
	switch key {
	case "event":
		return string(r.event)

	case "mac":
		fallthrough
	case "hwaddr":
		if r.client.HwAddr == nil {
			return ""
		}
		return r.client.HwAddr.String()

	case "hostname":
		return r.client.Hostname()

	case "type":
		return r.client.Type.String()

	case "addrs":
		addrs := make([]string, 0, len(r.client.Addresses))
		for _, a := range r.client.Addresses {
			addrs = append(addrs, a.Address.String())
		}
		return strings.Join(addrs, ", ")

	case "numaddrs":
		return strconv.Itoa(len(r.client.Addresses))

	case "expires":
		var earliest time.Time
		for _, a := range r.client.Addresses {
			if earliest.IsZero() || a.Expires.Before(earliest) {
				earliest = a.Expires
			}
		}
		if earliest.IsZero() {
			return ""
		}
		return earliest.Format(time.RFC3339)
	}

	return ""
}

// Replace replaces all keys in s with their counterpart. The algorithm below
// is based and mostly copied from
// https://github.com/caddyserver/caddy/blob/master/caddyhttp/httpserver/replacer.go
func (r *replacer) Replace(s string) string {
	// Short path if no replacement keys are found
	if !strings.ContainsAny(s, "{}") {
		return s
	}

	result := ""
Placeholders: // process each placeholder in sequence
	for {
		var idxStart, idxEnd int

		idxOffset := 0
		for { // find first unescaped opening brace
			searchSpace := s[idxOffset:]
			idxStart = strings.Index(searchSpace, "{")
			if idxStart == -1 {
				// no more placeholders
				break Placeholders
			}
			if idxStart == 0 || searchSpace[idxStart-1] != '\\' {
				// preceding character is not an escape
				idxStart += idxOffset
				break
			}
			// the brace we found was escaped
			// search the rest of the string next
			idxOffset += idxStart + 1
		}

		idxOffset = 0
		for { // find first unescaped closing brace
			searchSpace := s[idxStart+idxOffset:]
			idxEnd = strings.Index(searchSpace, "}")
			if idxEnd == -1 {
				// unpaired placeholder
				break Placeholders
			}
			if idxEnd == 0 || searchSpace[idxEnd-1] != '\\' {
				// preceding character is not an escape
				idxEnd += idxOffset + idxStart
				break
			}
			// the brace we found was escaped
			// search the rest of the string next
			idxOffset += idxEnd + 1
		}

		// get a replacement for the unescaped placeholder
		placeholder := unescapeBraces(s[idxStart : idxEnd+1])
		replacement := r.Get(placeholder[1 : len(placeholder)-1])

		// append unescaped prefix + replacement
		result += strings.TrimPrefix(unescapeBraces(s[:idxStart]), "\\") + replacement

		// strip out scanned parts
		s = s[idxEnd+1:]
	}

	// append unscanned parts
	return result + unescapeBraces(s)
}

// unescapeBraces finds escaped braces in s and returns
// a string with those braces unescaped.
func unescapeBraces(s string) string {
	s = strings.Replace(s, "\\{", "{", -1)
	s = strings.Replace(s, "\\}", "}", -1)
	return s
}
