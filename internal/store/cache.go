package store

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	cacheBucket = []byte("toughkiosk")
	documentKey = []byte("document")
	deviceIdKey = []byte("device_id")
)

// Cache is the per-device local fallback store. It holds the last-known
// document and the locally generated device identity, and survives both
// process restarts and network loss.
type Cache struct {
	db *bolt.DB
}

func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open cache")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init cache bucket")
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// GetDocument returns the cached document bytes, ok=false when absent.
func (c *Cache) GetDocument() ([]byte, bool) {
	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(cacheBucket).Get(documentKey)
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, data != nil
}

// PutDocument stores the document bytes. Callers treat failures as
// best-effort and swallow them.
func (c *Cache) PutDocument(data []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(documentKey, data)
	})
}

// DeviceId returns the persisted device identity, empty when none exists.
func (c *Cache) DeviceId() string {
	var id string
	_ = c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get(deviceIdKey); v != nil {
			id = string(v)
		}
		return nil
	})
	return id
}

// PutDeviceId persists the device identity. Supports operator override for
// restore scenarios: whatever is written here wins on the next start.
func (c *Cache) PutDeviceId(id string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(deviceIdKey, []byte(id))
	})
}
