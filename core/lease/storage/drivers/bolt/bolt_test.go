package bolt

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexttether/nexttether/core/lease/storage"
)

func getStorage(t *testing.T) *Storage {
	s, err := Open(filepath.Join(t.TempDir(), "leases.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestBolt_Create(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	assert.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires))

	// creating the same pair again fails
	err := s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires)
	assert.Equal(t, storage.ErrAlreadyCreated, err)

	// same IP but different client
	err = s.Create(ctx, net.IP{192, 168, 0, 1}, "client-2", true, expires)
	assert.IsType(t, &storage.ErrDuplicateIP{}, err)

	// same client but different IP
	err = s.Create(ctx, net.IP{192, 168, 0, 2}, "client-1", true, expires)
	assert.IsType(t, &storage.ErrDuplicateClientID{}, err)
}

func TestBolt_FindByIP(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", false, expires))

	clientID, leased, e, err := s.FindByIP(ctx, net.IP{192, 168, 0, 1})
	assert.NoError(t, err)
	assert.Equal(t, "client-1", clientID)
	assert.False(t, leased)
	assert.Equal(t, expires.Unix(), e.Unix())

	_, _, _, err = s.FindByIP(ctx, net.IP{192, 168, 0, 100})
	assert.True(t, storage.IsNotFound(err))
}

func TestBolt_FindByID(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires))

	ip, leased, _, err := s.FindByID(ctx, "client-1")
	assert.NoError(t, err)
	assert.Equal(t, net.IP{192, 168, 0, 1}, ip)
	assert.True(t, leased)

	_, _, _, err = s.FindByID(ctx, "client-2")
	assert.True(t, storage.IsNotFound(err))
}

func TestBolt_Update(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", false, expires))

	// convert the reservation into a lease
	assert.NoError(t, s.Update(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires.Add(time.Hour)))

	_, leased, e, err := s.FindByIP(ctx, net.IP{192, 168, 0, 1})
	require.NoError(t, err)
	assert.True(t, leased)
	assert.Equal(t, expires.Add(time.Hour).Unix(), e.Unix())

	// ownership change re-indexes the client ID
	assert.NoError(t, s.Update(ctx, net.IP{192, 168, 0, 1}, "client-2", true, expires))

	_, _, _, err = s.FindByID(ctx, "client-1")
	assert.True(t, storage.IsNotFound(err))

	ip, _, _, err := s.FindByID(ctx, "client-2")
	assert.NoError(t, err)
	assert.Equal(t, net.IP{192, 168, 0, 1}, ip)

	// updating an unknown IP fails
	err = s.Update(ctx, net.IP{192, 168, 0, 50}, "client-1", true, expires)
	assert.IsType(t, &storage.ErrIPNotFound{}, err)
}

func TestBolt_Delete(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires))

	assert.Equal(t, storage.ErrClientMismatch, s.Delete(ctx, net.IP{192, 168, 0, 1}, "client-2"))
	assert.NoError(t, s.Delete(ctx, net.IP{192, 168, 0, 1}, "client-1"))

	_, _, _, err := s.FindByIP(ctx, net.IP{192, 168, 0, 1})
	assert.True(t, storage.IsNotFound(err))

	err = s.Delete(ctx, net.IP{192, 168, 0, 1}, "")
	assert.IsType(t, &storage.ErrIPNotFound{}, err)
}

func TestBolt_List(t *testing.T) {
	s := getStorage(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 1}, "client-1", true, expires))
	require.NoError(t, s.Create(ctx, net.IP{192, 168, 0, 2}, "client-2", true, expires))

	ips, err := s.ListIPs(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []net.IP{{192, 168, 0, 1}, {192, 168, 0, 2}}, ips)

	ids, err := s.ListIDs(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"client-1", "client-2"}, ids)
}

func TestBolt_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leases.db")
	ctx := context.Background()
	expires := time.Now().Add(time.Minute)

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, net.IP{10, 0, 0, 1}, "client-1", true, expires))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	clientID, _, _, err := s.FindByIP(ctx, net.IP{10, 0, 0, 1})
	assert.NoError(t, err)
	assert.Equal(t, "client-1", clientID)
}
