package mqtt

import (
	"testing"

	"github.com/nexttether/nexttether/plugin/test"
	"github.com/stretchr/testify/assert"
)

func TestMqttSetup(t *testing.T) {
	t.Run("valid connection", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt {
			broker tcp://127.0.0.1:1883
			topic nexttether/clients/{mac}
			payload "{event}: {hostname}"
			qos 1
		}`)
		assert.NoError(t, setupMqtt(c))
	})

	t.Run("named connection and use", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt if event == 'client-connected' {
			name home
			broker tcp://127.0.0.1:1883
			topic nexttether/connected
		}

		mqtt if event == 'client-disconnected' {
			use home
			topic nexttether/disconnected
		}`)
		assert.NoError(t, setupMqtt(c))
	})

	t.Run("missing connection", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt {
			topic nexttether/clients
		}`)
		assert.Error(t, setupMqtt(c))
	})

	t.Run("missing topic", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt {
			broker tcp://127.0.0.1:1883
		}`)
		assert.Error(t, setupMqtt(c))
	})

	t.Run("use and connection settings conflict", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt {
			use home
			broker tcp://127.0.0.1:1883
			topic nexttether/clients
		}`)
		assert.Error(t, setupMqtt(c))
	})

	t.Run("invalid qos", func(t *testing.T) {
		c := test.CreateTestBed(t, `mqtt {
			broker tcp://127.0.0.1:1883
			topic nexttether/clients
			qos 5
		}`)
		assert.Error(t, setupMqtt(c))
	})
}
