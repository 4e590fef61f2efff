// Package matcher provides a simple "rule" language that may be used
// inside NextTether plugin directives to filter client events. The
// matcher library is based on github.com/Knetic/govaluate
package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/caddyserver/caddy"

	"github.com/nexttether/nexttether/core/client"
)

type (
	// Matcher is a client event matcher
	Matcher struct {
		// expr holds the pre-compiled expression
		expr *govaluate.EvaluableExpression
	}

	// ExprFunc can be used to expose functions to matcher expressions
	ExprFunc func(args ...interface{}) (interface{}, error)
)

// SetupMatcher parses the current dispenser block for if and if_op
// keywords and returns a client event matcher
func SetupMatcher(c *caddy.Controller, fns ...map[string]ExprFunc) (*Matcher, error) {
	exprStr, err := ParseConditions(c)
	if err != nil {
		return nil, err
	}

	return SetupMatcherString(exprStr, fns...)
}

// SetupMatcherRemainingArgs consumes the remaining tokens of the
// current line and compiles them into a client event matcher. A
// leading "if" token is skipped
func SetupMatcherRemainingArgs(c *caddy.Controller, fns ...map[string]ExprFunc) (*Matcher, error) {
	parts := c.RemainingArgs()
	if len(parts) > 0 && parts[0] == "if" {
		parts = parts[1:]
	}

	return SetupMatcherString(strings.Join(parts, " "), fns...)
}

// SetupMatcherString compiles the given expression string into a
// client event matcher. An empty expression yields a matcher that
// matches everything
func SetupMatcherString(exprStr string, fns ...map[string]ExprFunc) (*Matcher, error) {
	functions := make(map[string]govaluate.ExpressionFunction)

	for _, m := range fns {
		for name, fn := range m {
			functions[name] = govaluate.ExpressionFunction(fn)
		}
	}

	var expr *govaluate.EvaluableExpression

	if exprStr != "" {
		var err error

		expr, err = govaluate.NewEvaluableExpressionWithFunctions(exprStr, functions)
		if err != nil {
			return nil, err
		}
	}

	return &Matcher{
		expr: expr,
	}, nil
}

// Empty returns true if no condition has been configured. An empty
// matcher matches every event
func (m *Matcher) Empty() bool {
	return m.expr == nil
}

// Match evaluates the expression stored in the matcher against the
// given client event
func (m *Matcher) Match(ctx context.Context, event caddy.EventName, c *client.Tethered) (bool, error) {
	if m.expr == nil {
		return true, nil
	}

	result, err := m.expr.Evaluate(map[string]interface{}{
		"event":    string(event),
		"mac":      c.HwAddr.String(),
		"hostname": c.Hostname(),
		"type":     c.Type.String(),
		"numaddrs": float64(len(c.Addresses)),
	})

	if err != nil {
		return false, err
	}
	if b, ok := result.(bool); ok {
		return b, nil
	}

	return false, fmt.Errorf("expression did not evaluate to a boolean. instead, got: %v", result)
}
