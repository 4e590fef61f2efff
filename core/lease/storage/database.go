package storage

import (
	"context"
	"net"
	"time"

	"github.com/apex/log"

	"github.com/nexttether/nexttether/core/lease"
	tetherlog "github.com/nexttether/nexttether/core/log"
)

// Database implements lease.Database on top of a LeaseStorage
type Database struct {
	store LeaseStorage
	l     tetherlog.Logger
}

// NewDatabase creates a new database that uses store for persistence
func NewDatabase(store LeaseStorage) *Database {
	return &Database{
		store: store,
		l:     log.Log,
	}
}

func clientFromID(clientID string) lease.Client {
	cli := lease.Client{ID: clientID}
	if hw, err := net.ParseMAC(clientID); err == nil {
		cli.HwAddr = hw
	}

	return cli
}

// Leases returns all IP address leases
func (db *Database) Leases(ctx context.Context) ([]lease.Lease, error) {
	ips, err := db.store.ListIPs(ctx)
	if err != nil {
		return nil, err
	}

	leases := make([]lease.Lease, 0, len(ips))
	for _, ip := range ips {
		cli, leased, expiration, err := db.store.FindByIP(ctx, ip)
		if err != nil {
			if err == context.Canceled || err == context.DeadlineExceeded {
				return nil, err
			}

			db.l.Errorf("failed to load IP lease for %s: %s", ip.String(), err.Error())
			continue
		}

		if !leased {
			continue
		}

		leases = append(leases, lease.Lease{
			Client:  clientFromID(cli),
			Expires: expiration,
			Address: ip,
		})
	}

	return leases, nil
}

// ReservedAddresses returns all reserved but not-yet-leased addresses
func (db *Database) ReservedAddresses(ctx context.Context) (lease.ReservedAddressList, error) {
	ips, err := db.store.ListIPs(ctx)
	if err != nil {
		return nil, err
	}

	reservations := make(lease.ReservedAddressList, 0, len(ips))
	for _, ip := range ips {
		cli, leased, expiration, err := db.store.FindByIP(ctx, ip)
		if err != nil {
			if err == context.Canceled || err == context.DeadlineExceeded {
				return nil, err
			}

			db.l.Errorf("failed to load IP reservation for %s: %s", ip.String(), err.Error())
			continue
		}

		if leased {
			continue
		}

		expires := expiration
		reservations = append(reservations, lease.ReservedAddress{
			Client:  clientFromID(cli),
			Expires: &expires,
			IP:      ip,
		})
	}

	return reservations, nil
}

// Reserve implements lease.Database
func (db *Database) Reserve(ctx context.Context, ip net.IP, cli lease.Client) error {
	l := tetherlog.With(ctx, db.l)

	clientID := cli.HwAddr.String()

	existingClient, leased, expiration, err := db.store.FindByIP(ctx, ip)
	if err != nil && !IsNotFound(err) {
		l.Debugf("failed to query IP storage for %s: %s", ip, err.Error())
		return err
	}

	if err == nil {
		if existingClient != clientID {
			// IP address either leased or reserved for a different client
			if time.Now().Before(expiration) {
				l.Debugf("address %s already reserved for %s", ip, existingClient)
				if leased {
					return lease.ErrAddressInUse
				}
				return lease.ErrAddressReserved
			}

			// the previous lease or reservation expired, take it over
			return db.store.Update(ctx, ip, clientID, false, time.Now().Add(time.Minute))
		}

		// already leased or reserved for this client, refresh an
		// expired reservation
		if time.Now().After(expiration) && !leased {
			l.Debugf("updating expired reservation for %s", ip)
			return db.store.Update(ctx, ip, clientID, false, time.Now().Add(time.Minute))
		}

		return nil
	}

	return db.store.Create(ctx, ip, clientID, false, time.Now().Add(time.Minute))
}

// Lease implements lease.Database
func (db *Database) Lease(ctx context.Context, ip net.IP, cli lease.Client, leaseTime time.Duration, renew bool) (time.Duration, error) {
	l := tetherlog.With(ctx, db.l)

	clientID := cli.HwAddr.String()

	existingClient, leased, expiration, err := db.store.FindByIP(ctx, ip)
	if err != nil && !IsNotFound(err) {
		l.Errorf("failed to query lease storage for %s: %s", ip.String(), err.Error())
		return 0, err
	}

	if IsNotFound(err) {
		return 0, lease.ErrNoIPAvailable
	}

	if existingClient != clientID {
		if leased {
			return 0, lease.ErrAddressInUse
		}
		return 0, lease.ErrAddressReserved
	}

	newExpiration := expiration
	activeLeaseTime := time.Until(expiration)
	update := false

	if renew || !leased || time.Now().After(expiration) {
		newExpiration = time.Now().Add(leaseTime)
		activeLeaseTime = leaseTime
		update = true
	}

	if update {
		if err := db.store.Update(ctx, ip, clientID, true, newExpiration); err != nil {
			return 0, err
		}
	}

	return activeLeaseTime, nil
}

// Release implements lease.Database
func (db *Database) Release(ctx context.Context, ip net.IP) error {
	_, _, _, err := db.store.FindByIP(ctx, ip)
	if err != nil {
		if IsNotFound(err) {
			return lease.ErrNoIPAvailable
		}

		return err
	}

	return db.store.Delete(ctx, ip, "")
}

// DeleteReservation implements lease.Database
func (db *Database) DeleteReservation(ctx context.Context, ip net.IP, cli *lease.Client) error {
	existingClient, leased, _, err := db.store.FindByIP(ctx, ip)
	if err != nil {
		if IsNotFound(err) {
			return lease.ErrNoIPAvailable
		}

		return err
	}

	if leased {
		// leases must be released, not deleted
		return lease.ErrAddressInUse
	}

	clientID := ""
	if cli != nil {
		clientID = cli.HwAddr.String()
		if existingClient != clientID {
			return ErrClientMismatch
		}
	}

	return db.store.Delete(ctx, ip, clientID)
}

// compile time check
var _ lease.Database = &Database{}
