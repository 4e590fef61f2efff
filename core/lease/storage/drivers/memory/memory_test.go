package memory

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexttether/nexttether/core/lease/storage"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := New()

	ip := net.IP{192, 168, 43, 100}
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, ip, "aa:bb:cc:dd:ee:ff", false, expires))

	t.Run("unique indexes", func(t *testing.T) {
		err := s.Create(ctx, ip, "00:11:22:33:44:55", false, expires)
		assert.IsType(t, &storage.ErrDuplicateIP{}, err)

		err = s.Create(ctx, net.IP{192, 168, 43, 101}, "aa:bb:cc:dd:ee:ff", false, expires)
		assert.IsType(t, &storage.ErrDuplicateClientID{}, err)
	})

	t.Run("FindByIP", func(t *testing.T) {
		cli, leased, exp, err := s.FindByIP(ctx, ip)
		require.NoError(t, err)
		assert.Equal(t, "aa:bb:cc:dd:ee:ff", cli)
		assert.False(t, leased)
		assert.Equal(t, expires, exp)

		_, _, _, err = s.FindByIP(ctx, net.IP{10, 0, 0, 1})
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("FindByID", func(t *testing.T) {
		foundIP, _, _, err := s.FindByID(ctx, "aa:bb:cc:dd:ee:ff")
		require.NoError(t, err)
		assert.Equal(t, ip.String(), foundIP.String())

		_, _, _, err = s.FindByID(ctx, "unknown")
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("Update", func(t *testing.T) {
		newExpires := expires.Add(time.Hour)
		require.NoError(t, s.Update(ctx, ip, "aa:bb:cc:dd:ee:ff", true, newExpires))

		_, leased, exp, err := s.FindByIP(ctx, ip)
		require.NoError(t, err)
		assert.True(t, leased)
		assert.Equal(t, newExpires, exp)

		err = s.Update(ctx, net.IP{10, 0, 0, 1}, "aa:bb:cc:dd:ee:ff", true, newExpires)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("List", func(t *testing.T) {
		ips, err := s.ListIPs(ctx)
		require.NoError(t, err)
		assert.Len(t, ips, 1)

		ids, err := s.ListIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"aa:bb:cc:dd:ee:ff"}, ids)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, storage.ErrClientMismatch, s.Delete(ctx, ip, "00:11:22:33:44:55"))
		require.NoError(t, s.Delete(ctx, ip, "aa:bb:cc:dd:ee:ff"))

		err := s.Delete(ctx, ip, "")
		assert.True(t, storage.IsNotFound(err))
	})
}
