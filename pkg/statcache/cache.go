// Package statcache keeps recent directory listings and stat results in a
// BadgerDB store with per-entry TTL, in front of a trans2.Client.
package statcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// DefaultTTL is used when Config.TTL is zero.
const DefaultTTL = 30 * time.Second

// Key namespaces. The tree id is part of every key so that listings of
// different shares on one session never collide.
//
//	find:<tid>:<pattern>   []trans2.FileRecord (JSON)
//	stat:<tid>:<path>      trans2.FileRecord (JSON)
const (
	prefixFind = "find:"
	prefixStat = "stat:"
)

// Kinds reported to Metrics.
const (
	KindFind = "find"
	KindStat = "stat"
)

func keyFind(tid uint16, pattern string) []byte {
	return fmt.Appendf(nil, "%s%d:%s", prefixFind, tid, pattern)
}

func keyStat(tid uint16, path string) []byte {
	return fmt.Appendf(nil, "%s%d:%s", prefixStat, tid, path)
}

// Metrics observes cache effectiveness. Nil disables it.
type Metrics interface {
	RecordHit(kind string)
	RecordMiss(kind string)
	RecordStore(kind string, bytes int)
}

// Config configures a Cache.
type Config struct {
	// Dir holds the database files. Empty keeps everything in memory.
	Dir string

	// TTL bounds how long an entry is served.
	TTL time.Duration

	Metrics Metrics
}

// Cache is a TTL key-value cache of trans2 results.
type Cache struct {
	db      *badger.DB
	ttl     time.Duration
	metrics Metrics
}

// Open opens or creates the cache.
func Open(cfg Config) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(badgerLogger{})
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open stat cache: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{db: db, ttl: ttl, metrics: cfg.Metrics}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Purge drops every entry.
func (c *Cache) Purge() error {
	return c.db.DropAll()
}

// Invalidate drops the stat entry for path and every cached listing of the
// tree.
func (c *Cache) Invalidate(tid uint16, path string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(keyStat(tid, path)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	return c.db.DropPrefix(fmt.Appendf(nil, "%s%d:", prefixFind, tid))
}

// get decodes the value at key into out and reports whether it was found.
func (c *Cache) get(kind string, key []byte, out any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		c.recordMiss(kind)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.recordHit(kind)
	return true, nil
}

// put stores v at key with the cache TTL.
func (c *Cache) put(kind string, key []byte, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, val).WithTTL(c.ttl))
	})
	if err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordStore(kind, len(val))
	}
	return nil
}

func (c *Cache) recordHit(kind string) {
	if c.metrics != nil {
		c.metrics.RecordHit(kind)
	}
}

func (c *Cache) recordMiss(kind string) {
	if c.metrics != nil {
		c.metrics.RecordMiss(kind)
	}
}
