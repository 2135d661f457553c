// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ttlindex keeps a time-ordered sequence of keys carrying a TTL,
// sorted ascending by remaining time-to-live, so the background sweeper
// can scan from the front and stop at the first entry that isn't due yet.
package ttlindex

import (
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tritedb/tritedb/trie"
)

// Entry pairs a database name and key with the trie leaf Item that carries
// its TTL metadata, so the sweeper can both evaluate expiry and delete the
// key from its owning trie.
type Entry struct {
	DB   string
	Key  []byte
	Item *trie.Item
}

func entryKey(db string, key []byte) string {
	return db + "\x00" + string(key)
}

// Index is the TTL index described by the specification: entries sorted
// ascending by Ctime+TTL-now at the time of the last reorder.
type Index struct {
	entries []*Entry
	byKey   map[string]*Entry

	// recentlySwept is a small bounded cache of the keys most recently
	// removed from the index, whether by Remove directly or by Sweep
	// (which calls Remove). Only its size is read, via RecentlySweptCount;
	// nothing consults its contents.
	recentlySwept *lru.Cache
}

// New returns an empty TTL index.
func New() *Index {
	cache, err := lru.New(256)
	if err != nil {
		// Only fails for a non-positive size, which 256 never is.
		panic(err)
	}
	return &Index{byKey: make(map[string]*Entry), recentlySwept: cache}
}

// Upsert records that db/key now carries item's TTL. If the key had no
// prior TTL entry, a new one is appended; otherwise the existing entry is
// reused in place (its Item pointer is already the live item). Either way
// the index is resorted, since that ordering is the sweeper's correctness
// guarantee.
func (idx *Index) Upsert(db string, key []byte, item *trie.Item) {
	k := entryKey(db, key)
	if e, ok := idx.byKey[k]; ok {
		e.Item = item
	} else {
		e := &Entry{DB: db, Key: append([]byte(nil), key...), Item: item}
		idx.entries = append(idx.entries, e)
		idx.byKey[k] = e
	}
	idx.resort()
}

// Remove drops the TTL entry for db/key, if any. Called on delete, on
// resetting a key without a TTL, and after the sweeper expires a key.
func (idx *Index) Remove(db string, key []byte) {
	k := entryKey(db, key)
	e, ok := idx.byKey[k]
	if !ok {
		return
	}
	delete(idx.byKey, k)
	for i, cur := range idx.entries {
		if cur == e {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			break
		}
	}
	idx.recentlySwept.Add(k, time.Now())
}

// Len returns the number of tracked entries.
func (idx *Index) Len() int { return len(idx.entries) }

func (idx *Index) resort() {
	now := time.Now().Unix()
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return idx.entries[i].Item.Remaining(now) < idx.entries[j].Item.Remaining(now)
	})
}

// Sweep scans the index from the front, invoking expire for every entry
// whose remaining TTL at "now" is <= 0, and stops at the first entry that
// isn't due yet (the index is sorted, so nothing further down could be
// due either). expire is responsible for deleting the key from its owning
// trie; Sweep itself only removes the TTL entry.
func (idx *Index) Sweep(now int64, expire func(db string, key []byte)) int {
	swept := 0
	for len(idx.entries) > 0 {
		e := idx.entries[0]
		if e.Item.Remaining(now) > 0 {
			break
		}
		idx.Remove(e.DB, e.Key)
		expire(e.DB, e.Key)
		swept++
	}
	return swept
}

// RecentlySweptCount reports how many keys are currently held in the
// cache of recently removed entries.
func (idx *Index) RecentlySweptCount() int {
	return idx.recentlySwept.Len()
}
