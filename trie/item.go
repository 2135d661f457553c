// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package trie implements the ordered-child trie that indexes every
// database's keyspace: point insert/find/delete plus the prefix family
// (set, delete, count, inc, dec, enumerate) the store is named after.
package trie

import "time"

// NoTTL is the sentinel value of Item.TTL meaning "never expires",
// distinguishable from any real (non-negative) TTL in seconds.
const NoTTL int32 = -1

// Item is the payload attached to a complete key.
type Item struct {
	Data    []byte
	TTL     int32 // seconds; NoTTL sentinel means "no expiry"
	Ctime   int64 // epoch seconds, value/TTL last (re)set
	Latime  int64 // epoch seconds, last read/modify
}

// Expired reports whether the item's TTL, evaluated at "now", has lapsed.
// An item with TTL == NoTTL is never expired.
func (it *Item) Expired(now int64) bool {
	if it == nil || it.TTL == NoTTL {
		return false
	}
	return it.Ctime+int64(it.TTL)-now <= 0
}

// Remaining returns the number of seconds left before expiry at "now". The
// value is meaningless (and ignored by callers) when TTL == NoTTL.
func (it *Item) Remaining(now int64) int64 {
	if it == nil || it.TTL == NoTTL {
		return 0
	}
	return it.Ctime + int64(it.TTL) - now
}

func nowSeconds() int64 { return time.Now().Unix() }
