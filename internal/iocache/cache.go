// Package iocache keeps responses of the remote nomenclature service in a
// Badger key-value store, so a resumed reconciliation does not repeat
// lookups that already succeeded. The cache is stored at
// ~/.cache/mlidb/reconcile and can be removed at any time.
package iocache

import (
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
)

// Cache stores GOB-encoded values by string keys.
type Cache struct {
	dir string
	db  *badger.DB
	enc gnfmt.GNgob
}

// New creates a cache at dir. The directory is created if needed. With
// clean set, existing data is removed.
func New(dir string, clean bool) (*Cache, error) {
	c := &Cache{dir: dir}

	if err := gnsys.MakeDir(dir); err != nil {
		slog.Error("Cannot create cache directory", "error", err, "dir", dir)
		return nil, OpenError(dir, err)
	}

	if clean {
		if err := gnsys.CleanDir(dir); err != nil {
			slog.Error("Cannot clean cache directory", "error", err, "dir", dir)
			return nil, OpenError(dir, err)
		}
	}
	return c, nil
}

// Open opens the Badger database of the cache.
func (c *Cache) Open() error {
	if c.db != nil {
		slog.Warn("Cache database is already open")
		return nil
	}

	options := badger.DefaultOptions(c.dir)
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		slog.Error("Cannot open cache database", "error", err, "dir", c.dir)
		return OpenError(c.dir, err)
	}

	c.db = db
	slog.Info("Cache database opened", "dir", c.dir)
	return nil
}

// Close closes the Badger database. Closing a closed cache does nothing.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil
	if err != nil {
		slog.Error("Cannot close cache database", "error", err)
		return err
	}

	slog.Info("Cache database closed")
	return nil
}

// Set stores a value under key.
func (c *Cache) Set(key string, val any) error {
	if c.db == nil {
		return NotOpenError()
	}

	bs, err := c.enc.Encode(val)
	if err != nil {
		slog.Error("Cannot encode cached value", "error", err, "key", key)
		return WriteError(key, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bs)
	})
	if err != nil {
		slog.Error("Cannot store cached value", "error", err, "key", key)
		return WriteError(key, err)
	}
	return nil
}

// Get decodes the value stored under key into dest. It returns false if
// the key is not in the cache.
func (c *Cache) Get(key string, dest any) (bool, error) {
	if c.db == nil {
		return false, NotOpenError()
	}

	var bs []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		bs, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		slog.Error("Cannot read cached value", "error", err, "key", key)
		return false, ReadError(key, err)
	}
	if bs == nil {
		return false, nil
	}

	if err = c.enc.Decode(bs, dest); err != nil {
		slog.Error("Cannot decode cached value", "error", err, "key", key)
		return false, ReadError(key, err)
	}
	return true, nil
}

// Cleanup closes the database and removes cached data.
func (c *Cache) Cleanup() error {
	if err := c.Close(); err != nil {
		return err
	}

	if err := gnsys.CleanDir(c.dir); err != nil {
		slog.Error("Cannot remove cache directory", "error", err, "dir", c.dir)
		return err
	}

	slog.Info("Cache cleaned up", "dir", c.dir)
	return nil
}
