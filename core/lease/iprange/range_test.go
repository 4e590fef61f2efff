package iprange

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRange(t *testing.T) {
	r := &IPRange{
		Start: net.IP{192, 168, 43, 100},
		End:   net.IP{192, 168, 43, 200},
	}

	t.Run("Len", func(t *testing.T) {
		assert.Equal(t, 101, r.Len())
		assert.Equal(t, 0, (*IPRange)(nil).Len())
	})

	t.Run("ByIdx", func(t *testing.T) {
		assert.Equal(t, "192.168.43.100", r.ByIdx(0).String())
		assert.Equal(t, "192.168.43.150", r.ByIdx(50).String())
	})

	t.Run("Contains", func(t *testing.T) {
		assert.True(t, r.Contains(net.IP{192, 168, 43, 100}))
		assert.True(t, r.Contains(net.IP{192, 168, 43, 200}))
		assert.False(t, r.Contains(net.IP{192, 168, 43, 99}))
		assert.False(t, r.Contains(net.IP{192, 168, 44, 150}))
	})

	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, r.Validate())
		assert.Error(t, (&IPRange{Start: net.IP{192, 168, 43, 200}, End: net.IP{192, 168, 43, 100}}).Validate())
		assert.Error(t, (&IPRange{End: net.IP{192, 168, 43, 100}}).Validate())
	})
}

func TestMerge(t *testing.T) {
	merged := Merge([]*IPRange{
		{Start: net.IP{10, 0, 0, 10}, End: net.IP{10, 0, 0, 20}},
		{Start: net.IP{10, 0, 0, 15}, End: net.IP{10, 0, 0, 30}},
		{Start: net.IP{10, 0, 0, 50}, End: net.IP{10, 0, 0, 60}},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, "10.0.0.10-10.0.0.30", merged[0].String())
	assert.Equal(t, "10.0.0.50-10.0.0.60", merged[1].String())

	assert.Nil(t, Merge(nil))
}

func TestIPConversion(t *testing.T) {
	v, ok := IP2Int(net.IP{10, 0, 0, 1})
	require.True(t, ok)
	assert.Equal(t, net.IP{10, 0, 0, 1}, Int2IP(v))

	_, ok = IP2Int(net.ParseIP("fe80::1"))
	assert.False(t, ok)
}
