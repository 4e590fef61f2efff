package linktype

import (
	"testing"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/tetherserver"
	"github.com/nexttether/nexttether/plugin/test"
	"github.com/stretchr/testify/assert"
)

func TestTypeSetup(t *testing.T) {
	t.Run("valid type", func(t *testing.T) {
		c := test.CreateTestBed(t, "type bluetooth")

		assert.NoError(t, setupType(c))

		cfg := tetherserver.GetConfig(c)
		assert.Equal(t, client.TypeBluetooth, cfg.Type)
		assert.True(t, cfg.TypeConfigured)
	})

	t.Run("unknown type", func(t *testing.T) {
		c := test.CreateTestBed(t, "type carrier-pigeon")
		assert.Error(t, setupType(c))
	})

	t.Run("missing argument", func(t *testing.T) {
		c := test.CreateTestBed(t, "type")
		assert.Error(t, setupType(c))
	})

	t.Run("multiple directives", func(t *testing.T) {
		c := test.CreateTestBed(t, "type wifi\ntype usb")
		assert.Error(t, setupType(c))
	})
}
