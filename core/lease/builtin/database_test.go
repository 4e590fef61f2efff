package builtin

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexttether/nexttether/core/lease"
)

var (
	testIP  = net.IP{192, 168, 43, 100}
	testCli = lease.Client{
		HwAddr:   net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Hostname: "phone",
		ID:       "aa:bb:cc:dd:ee:ff",
	}
	otherCli = lease.Client{
		HwAddr: net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		ID:     "00:11:22:33:44:55",
	}
)

func TestReserveAndLease(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Reserve(ctx, testIP, testCli))

	// reserving again for the same client is a no-op
	assert.NoError(t, db.Reserve(ctx, testIP, testCli))

	// a different client must not get the reserved address
	assert.Equal(t, lease.ErrAddressReserved, db.Reserve(ctx, testIP, otherCli))

	reservations, err := db.ReservedAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.NotNil(t, reservations.FindMAC(testCli.HwAddr))

	leaseTime, err := db.Lease(ctx, testIP, testCli, time.Minute, false)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, leaseTime)

	leases, err := db.Leases(ctx)
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, testIP.String(), leases[0].Address.String())
	assert.Equal(t, "phone", leases[0].Hostname)

	// the reservation is converted into a lease
	reservations, err = db.ReservedAddresses(ctx)
	require.NoError(t, err)
	assert.Len(t, reservations, 0)

	// leasing for another client must fail now
	_, err = db.Lease(ctx, testIP, otherCli, time.Minute, false)
	assert.Equal(t, lease.ErrAddressInUse, err)
}

func TestLeaseRenew(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Reserve(ctx, testIP, testCli))
	_, err := db.Lease(ctx, testIP, testCli, time.Minute, false)
	require.NoError(t, err)

	remaining, err := db.Lease(ctx, testIP, testCli, time.Hour, true)
	require.NoError(t, err)
	assert.InDelta(t, time.Hour, remaining, float64(time.Second))
}

func TestLeaseWithoutReservation(t *testing.T) {
	ctx := context.Background()
	db := New()

	_, err := db.Lease(ctx, testIP, testCli, time.Minute, false)
	assert.Equal(t, lease.ErrNoIPAvailable, err)
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Reserve(ctx, testIP, testCli))
	_, err := db.Lease(ctx, testIP, testCli, time.Minute, false)
	require.NoError(t, err)

	require.NoError(t, db.Release(ctx, testIP))

	leases, err := db.Leases(ctx)
	require.NoError(t, err)
	assert.Len(t, leases, 0)

	assert.Equal(t, lease.ErrNoIPAvailable, db.Release(ctx, testIP))
}

func TestDeleteReservation(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Reserve(ctx, testIP, testCli))

	// wrong client
	assert.Error(t, db.DeleteReservation(ctx, testIP, &otherCli))

	require.NoError(t, db.DeleteReservation(ctx, testIP, &testCli))
	assert.Equal(t, lease.ErrNoIPAvailable, db.DeleteReservation(ctx, testIP, nil))
}

func TestInvalidAddresses(t *testing.T) {
	ctx := context.Background()
	db := New()

	v6 := net.ParseIP("fe80::1")

	assert.Equal(t, lease.ErrInvalidAddress, db.Reserve(ctx, v6, testCli))
	_, err := db.Lease(ctx, v6, testCli, time.Minute, false)
	assert.Equal(t, lease.ErrInvalidAddress, err)
	assert.Equal(t, lease.ErrInvalidAddress, db.Release(ctx, v6))
}
