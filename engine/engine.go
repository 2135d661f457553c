// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine composes the database registry and the TTL index behind
// the single writer lock that serializes every mutating and observing
// handler, per the concurrency model: the trie engine and TTL index are
// protected together, not independently.
package engine

import (
	"sync"
	"time"

	"github.com/tritedb/tritedb/database"
	"github.com/tritedb/tritedb/metrics"
	"github.com/tritedb/tritedb/trie"
	"github.com/tritedb/tritedb/ttlindex"
)

// Engine is the single writer-locked owner of every database and the
// shared TTL index. All trie and TTL mutation/observation in the server
// goes through Engine so the lock discipline described in the
// specification's concurrency model lives in exactly one place.
type Engine struct {
	mu       sync.Mutex
	reg      *database.Registry
	ttlIndex *ttlindex.Index
	metrics  *metrics.Metrics
}

// New returns a ready-to-use Engine with db0 already created.
func New() *Engine {
	return &Engine{
		reg:      database.NewRegistry(),
		ttlIndex: ttlindex.New(),
	}
}

// SetMetrics wires in the Prometheus metrics that Put, Delete,
// PrefixDelete, Flush and Sweep report each database's size to
// afterwards. Keys removed by the lazy expiry check in Find and
// GetPrefix are not reported until one of those runs. Construction order mirrors
// dispatch.Dispatcher.SetClientCounter: the caller builds the Metrics
// before the Engine it instruments, then wires it in.
func (e *Engine) SetMetrics(m *metrics.Metrics) { e.metrics = m }

// reportSize pushes db's current size onto its per-database Prometheus
// gauge, a no-op until SetMetrics has been called.
func (e *Engine) reportSize(dbName string, db *database.Database) {
	if e.metrics == nil || db == nil {
		return
	}
	db.SetSizeGauge(e.metrics.KeysTotal.WithLabelValues(dbName))
	db.ReportSize()
}

// Locked runs fn while holding the writer lock, handing it the registry
// and TTL index to operate on. Every dispatch handler and the background
// sweeper funnel through Locked.
func (e *Engine) Locked(fn func(reg *database.Registry, idx *ttlindex.Index)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.reg, e.ttlIndex)
}

// Now returns the current Unix time; a method so tests can't accidentally
// call time.Now() with differing truncation across a single request.
func (e *Engine) Now() int64 { return time.Now().Unix() }

// Find performs a lazy-checked lookup of key in db: if the item's TTL has
// lapsed it is deleted (from the trie and the TTL index) and absence is
// reported, exactly as the specification's lazy-expiry path requires.
func (e *Engine) Find(dbName string, key []byte) (item *trie.Item, ok bool) {
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		it := db.Trie.Find(key)
		if it == nil {
			return
		}
		if it.Expired(e.Now()) {
			db.Trie.Delete(key)
			idx.Remove(dbName, key)
			return
		}
		item = it
		ok = true
	})
	return item, ok
}

// SetTTL sets/replaces key's TTL in db, maintaining the TTL index
// (appending a new entry, or mutating the existing one in place) and
// resorting it, per the specification's TTL-index maintenance rules.
// Returns false if key doesn't exist.
func (e *Engine) SetTTL(dbName string, key []byte, ttl int32) bool {
	var ok bool
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		item := db.Trie.Find(key)
		if item == nil || item.Expired(e.Now()) {
			return
		}
		hadTTL := item.TTL != trie.NoTTL
		item.TTL = ttl
		item.Ctime = e.Now()
		if ttl == trie.NoTTL {
			if hadTTL {
				idx.Remove(dbName, key)
			}
			ok = true
			return
		}
		idx.Upsert(dbName, key, item)
		ok = true
	})
	return ok
}

// Put inserts/replaces key in db with val and ttl (point form), or, when
// prefix is true, applies val/ttl onto every existing item under key
// without creating new ones (PrefixSet's update-only policy). Either way
// the TTL index is kept consistent with whatever ttl ends up attached to
// each touched item.
func (e *Engine) Put(dbName string, key, val []byte, ttl int32, prefix bool) {
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.GetOrCreate(dbName)
		defer e.reportSize(dbName, db)
		if prefix {
			db.Trie.PrefixSet(key, val, ttl)
			for _, v := range db.Trie.PrefixEnumerate(key) {
				if ttl == trie.NoTTL {
					idx.Remove(dbName, v.Key)
				} else {
					idx.Upsert(dbName, v.Key, v.Item)
				}
			}
			return
		}
		item := db.Trie.Insert(key, val)
		if ttl == trie.NoTTL {
			idx.Remove(dbName, key)
			return
		}
		item.TTL = ttl
		idx.Upsert(dbName, key, item)
	})
}

// GetPoint performs the lazy-checked point lookup also exposed as Find;
// kept under this name for symmetry with GetPrefix at dispatch call
// sites.
func (e *Engine) GetPoint(dbName string, key []byte) (*trie.Item, bool) {
	return e.Find(dbName, key)
}

// GetPrefix returns every non-expired item under prefix in db, applying
// the same lazy-expiry check Find does to each candidate before
// including it.
func (e *Engine) GetPrefix(dbName string, prefix []byte) []trie.Enumerated {
	var out []trie.Enumerated
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		now := e.Now()
		for _, v := range db.Trie.PrefixEnumerate(prefix) {
			if v.Item.Expired(now) {
				db.Trie.Delete(v.Key)
				idx.Remove(dbName, v.Key)
				continue
			}
			out = append(out, v)
		}
	})
	return out
}

// Count returns 1 or 0 for a point key (existence, after lazy expiry),
// or the subtree count under prefix when prefix is true.
func (e *Engine) Count(dbName string, key []byte, prefix bool) int {
	if prefix {
		var n int
		e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
			db := reg.Get(dbName)
			if db == nil {
				return
			}
			n = db.Trie.PrefixCount(key)
		})
		return n
	}
	if _, ok := e.Find(dbName, key); ok {
		return 1
	}
	return 0
}

// IncDec applies delta (+1 or -1) to key's integer value in db: the
// single item at key in point form, or every integer-valued item under
// key when prefix is true. In point form it returns whether the item
// changed; in prefix form it returns true whenever the database exists,
// even if zero items were touched, matching the original
// prefix-inc/dec's silent-skip policy.
func (e *Engine) IncDec(dbName string, key []byte, delta int64, prefix bool) bool {
	var ok bool
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		if prefix {
			if delta > 0 {
				db.Trie.PrefixInc(key)
			} else {
				db.Trie.PrefixDec(key)
			}
			ok = true
			return
		}
		if delta > 0 {
			ok = db.Trie.Inc(key)
		} else {
			ok = db.Trie.Dec(key)
		}
	})
	return ok
}

// Use selects (creating if necessary) the database named name, returning
// its name for the DB response.
func (e *Engine) Use(name string) string {
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		reg.GetOrCreate(name)
	})
	return name
}

// KeyCount returns the total number of items across every database,
// reported by INFO.
func (e *Engine) KeyCount() uint64 {
	var total uint64
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		for _, name := range reg.Names() {
			total += uint64(reg.Get(name).Size())
		}
	})
	return total
}

// RecentlySweptCount reports the size of the TTL index's cache of recently
// removed entries. The INFO response does not include it.
func (e *Engine) RecentlySweptCount() int {
	var n int
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		n = idx.RecentlySweptCount()
	})
	return n
}

// Delete removes key from db (point), also dropping any TTL index entry.
func (e *Engine) Delete(dbName string, key []byte) bool {
	var deleted bool
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		if db.Trie.Delete(key) {
			idx.Remove(dbName, key)
			deleted = true
			e.reportSize(dbName, db)
		}
	})
	return deleted
}

// PrefixDelete removes every key under prefix in db, dropping matching TTL
// index entries, and returns the number of keys removed.
func (e *Engine) PrefixDelete(dbName string, prefix []byte) int {
	var removed int
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		victims := db.Trie.PrefixEnumerate(prefix)
		removed = db.Trie.PrefixDelete(prefix)
		for _, v := range victims {
			idx.Remove(dbName, v.Key)
		}
		if removed > 0 {
			e.reportSize(dbName, db)
		}
	})
	return removed
}

// Flush empties db's trie and purges every TTL index entry that belonged
// to it, since those entries would otherwise dangle against items from a
// trie that no longer exists.
func (e *Engine) Flush(dbName string) {
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		db := reg.Get(dbName)
		if db == nil {
			return
		}
		for _, v := range db.Trie.PrefixEnumerate(nil) {
			idx.Remove(dbName, v.Key)
		}
		reg.Flush(dbName)
		e.reportSize(dbName, reg.Get(dbName))
	})
}

// Sweep runs one pass of the background TTL sweeper across every
// database, deleting expired keys from their owning trie as the TTL index
// reports them due. Returns the number of keys expired.
func (e *Engine) Sweep() int {
	var swept int
	e.Locked(func(reg *database.Registry, idx *ttlindex.Index) {
		touched := make(map[string]*database.Database)
		swept = idx.Sweep(e.Now(), func(dbName string, key []byte) {
			if db := reg.Get(dbName); db != nil {
				db.Trie.Delete(key)
				touched[dbName] = db
			}
		})
		for dbName, db := range touched {
			e.reportSize(dbName, db)
		}
	})
	return swept
}
