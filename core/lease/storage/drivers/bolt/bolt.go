// Package bolt provides a LeaseStorage implementation that persists
// IP leases in a bbolt database file
package bolt

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"go.etcd.io/bbolt"

	"github.com/nexttether/nexttether/core/lease/storage"
)

var (
	ipLeaseBucketKey = []byte("ip-leases")
	idToIPBucketKey  = []byte("id-to-ip-bucket")
)

type (
	// Storage is a storage.LeaseStorage implementation that persists
	// IP leases in a bbolt database
	Storage struct {
		db   *bbolt.DB
		path string
	}

	entry struct {
		Expires  int64  `json:"expires"`
		ClientID string `json:"clientID"`
		Leased   bool   `json:"leased"`
	}
)

// Open opens or creates the bolt database at path
func Open(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o660, nil)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db, path: path}, nil
}

// Close closes the underlying bolt database
func (s *Storage) Close() error {
	return s.db.Close()
}

func openOrCreateBuckets(tx *bbolt.Tx) (*bbolt.Bucket, *bbolt.Bucket, error) {
	ipLeaseBucket, err := tx.CreateBucketIfNotExists(ipLeaseBucketKey)
	if err != nil {
		return nil, nil, err
	}

	idToIPBucket, err := tx.CreateBucketIfNotExists(idToIPBucketKey)
	if err != nil {
		return nil, nil, err
	}

	return ipLeaseBucket, idToIPBucket, nil
}

func assertUniqueClient(idToIPBucket *bbolt.Bucket, clientID string, ip net.IP) error {
	existing := idToIPBucket.Get([]byte(clientID))
	if existing != nil && net.IP(existing).String() != ip.String() {
		return &storage.ErrDuplicateClientID{
			ClientID: clientID,
			IP:       append(net.IP{}, existing...),
		}
	}

	return nil
}

func assertUniqueIP(ipLeaseBucket *bbolt.Bucket, ip net.IP, clientID string) error {
	blob := ipLeaseBucket.Get([]byte(ip))
	if blob == nil {
		return nil
	}

	var e entry
	if err := json.Unmarshal(blob, &e); err != nil {
		return err
	}

	if e.ClientID != clientID {
		return &storage.ErrDuplicateIP{IP: ip, ClientID: e.ClientID}
	}

	return nil
}

// Create implements storage.LeaseStorage
func (s *Storage) Create(ctx context.Context, ip net.IP, clientID string, leased bool, expiration time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		ipLeaseBucket, idToIPBucket, err := openOrCreateBuckets(tx)
		if err != nil {
			return err
		}
		if err := assertUniqueClient(idToIPBucket, clientID, ip); err != nil {
			return err
		}
		if err := assertUniqueIP(ipLeaseBucket, ip, clientID); err != nil {
			return err
		}
		if ipLeaseBucket.Get([]byte(ip)) != nil {
			// the same IP/clientID pair is already stored
			return storage.ErrAlreadyCreated
		}

		e := entry{
			Expires:  expiration.Unix(),
			ClientID: clientID,
			Leased:   leased,
		}
		blob, err := json.Marshal(e)
		if err != nil {
			return err
		}

		if err := idToIPBucket.Put([]byte(clientID), []byte(ip)); err != nil {
			return err
		}
		return ipLeaseBucket.Put([]byte(ip), blob)
	})
}

// Delete implements storage.LeaseStorage
func (s *Storage) Delete(ctx context.Context, ip net.IP, clientID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		ipLeaseBucket, idToIPBucket, err := openOrCreateBuckets(tx)
		if err != nil {
			return err
		}

		blob := ipLeaseBucket.Get([]byte(ip))
		if blob == nil {
			return &storage.ErrIPNotFound{IP: ip}
		}

		var e entry
		if err := json.Unmarshal(blob, &e); err != nil {
			return err
		}

		if clientID != "" && e.ClientID != clientID {
			return storage.ErrClientMismatch
		}

		if err := ipLeaseBucket.Delete([]byte(ip)); err != nil {
			return err
		}

		return idToIPBucket.Delete([]byte(e.ClientID))
	})
}

// Update implements storage.LeaseStorage
func (s *Storage) Update(ctx context.Context, ip net.IP, clientID string, leased bool, expiration time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		ipLeaseBucket, idToIPBucket, err := openOrCreateBuckets(tx)
		if err != nil {
			return err
		}
		blob := ipLeaseBucket.Get([]byte(ip))
		if blob == nil {
			return &storage.ErrIPNotFound{IP: ip}
		}

		var old entry
		if err := json.Unmarshal(blob, &old); err != nil {
			return err
		}

		if old.ClientID != clientID {
			// the address changes ownership, update the client index
			if err := idToIPBucket.Delete([]byte(old.ClientID)); err != nil {
				return err
			}
			if err := idToIPBucket.Put([]byte(clientID), []byte(ip)); err != nil {
				return err
			}
		}

		e := entry{
			ClientID: clientID,
			Expires:  expiration.Unix(),
			Leased:   leased,
		}
		blob, err = json.Marshal(e)
		if err != nil {
			return err
		}

		return ipLeaseBucket.Put([]byte(ip), blob)
	})
}

// FindByIP implements storage.LeaseStorage
func (s *Storage) FindByIP(ctx context.Context, ip net.IP) (string, bool, time.Time, error) {
	var e entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		ipLeaseBucket := tx.Bucket(ipLeaseBucketKey)
		if ipLeaseBucket == nil {
			// not found because the bucket hasn't even been created yet
			return &storage.ErrIPNotFound{IP: ip}
		}

		blob := ipLeaseBucket.Get([]byte(ip))
		if blob == nil {
			return &storage.ErrIPNotFound{IP: ip}
		}

		return json.Unmarshal(blob, &e)
	})

	if err != nil {
		return "", false, time.Time{}, err
	}

	return e.ClientID, e.Leased, time.Unix(e.Expires, 0), nil
}

// FindByID implements storage.LeaseStorage
func (s *Storage) FindByID(ctx context.Context, clientID string) (net.IP, bool, time.Time, error) {
	var (
		ip net.IP
		e  entry
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		idToIPBucket := tx.Bucket(idToIPBucketKey)
		ipLeaseBucket := tx.Bucket(ipLeaseBucketKey)
		if idToIPBucket == nil || ipLeaseBucket == nil {
			return &storage.ErrClientNotFound{ClientID: clientID}
		}

		rawIP := idToIPBucket.Get([]byte(clientID))
		if rawIP == nil {
			return &storage.ErrClientNotFound{ClientID: clientID}
		}
		ip = append(net.IP{}, rawIP...)

		blob := ipLeaseBucket.Get(rawIP)
		if blob == nil {
			return &storage.ErrClientNotFound{ClientID: clientID}
		}

		return json.Unmarshal(blob, &e)
	})

	if err != nil {
		return nil, false, time.Time{}, err
	}

	return ip, e.Leased, time.Unix(e.Expires, 0), nil
}

// ListIPs implements storage.LeaseStorage
func (s *Storage) ListIPs(ctx context.Context) ([]net.IP, error) {
	var ips []net.IP

	err := s.db.View(func(tx *bbolt.Tx) error {
		ipLeaseBucket := tx.Bucket(ipLeaseBucketKey)
		if ipLeaseBucket == nil {
			return nil
		}

		return ipLeaseBucket.ForEach(func(k, v []byte) error {
			ips = append(ips, append(net.IP{}, k...))
			return nil
		})
	})

	return ips, err
}

// ListIDs implements storage.LeaseStorage
func (s *Storage) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		idToIPBucket := tx.Bucket(idToIPBucketKey)
		if idToIPBucket == nil {
			return nil
		}

		return idToIPBucket.ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})

	return ids, err
}

// compile time check
var _ storage.LeaseStorage = &Storage{}
