// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import "strconv"

// Trie is a character-indexed radix tree: every edge carries one byte of
// the key. It is not safe for concurrent use — callers serialize access
// with the single writer lock held by the engine package.
type Trie struct {
	root *node
	size int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Size returns the number of item-bearing nodes in the trie.
func (t *Trie) Size() int { return t.size }

// Insert walks/creates nodes for each byte of key, and returns a stable
// pointer to the terminal Item usable by the TTL path. Re-inserting an
// existing key replaces its data in place without changing Size.
func (t *Trie) Insert(key []byte, data []byte) *Item {
	cur := t.root
	for _, c := range key {
		cur = cur.childOrCreate(c)
	}
	now := nowSeconds()
	if cur.item == nil {
		cur.item = &Item{}
		t.size++
	}
	cur.item.Data = append([]byte(nil), data...)
	cur.item.TTL = NoTTL
	cur.item.Ctime = now
	cur.item.Latime = now
	return cur.item
}

// find descends one child per byte of key, returning the terminal node or
// nil if the path doesn't fully exist.
func (t *Trie) find(key []byte) *node {
	cur := t.root
	for _, c := range key {
		cur = cur.childAt(c)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Find returns the Item stored at key, or nil if key was never inserted
// (or has since been deleted). It does not perform TTL expiry checks —
// that lazy check is the caller's responsibility (see engine.Engine.Find).
func (t *Trie) Find(key []byte) *Item {
	n := t.find(key)
	if n == nil {
		return nil
	}
	return n.item
}

// Delete removes the item at key, if present, pruning any ancestor left
// with neither an item nor children. Returns true if an item was removed.
func (t *Trie) Delete(key []byte) bool {
	if len(key) == 0 {
		return false
	}
	found := false
	t.deleteRec(t.root, key, &found)
	return found
}

// deleteRec returns true if n itself became eligible for pruning (no item,
// no children), in which case the caller removes it from its parent's
// children — mirroring the C implementation's climb-and-prune recursion.
func (t *Trie) deleteRec(n *node, key []byte, found *bool) bool {
	if n == nil {
		return false
	}
	if len(key) == 0 {
		if n.item != nil {
			*found = true
			n.item = nil
			t.size--
			return n.isFree()
		}
		return false
	}

	c := key[0]
	child := n.childAt(c)
	if child == nil {
		return false
	}
	if t.deleteRec(child, key[1:], found) {
		n.removeChild(c)
		return n.item == nil && n.isFree()
	}
	return false
}

// PrefixDelete removes every key under prefix (prefix itself included, if
// it is a complete key), returning the number of items removed.
func (t *Trie) PrefixDelete(prefix []byte) int {
	cursor := t.find(prefix)
	if cursor == nil {
		return 0
	}

	removed := 0
	if cursor.item != nil {
		cursor.item = nil
		t.size--
		removed++
	}
	for _, child := range cursor.children {
		removed += t.countAndClear(child)
	}
	cursor.children = nil

	// Unwind pruning toward the root for the prefix path itself.
	t.pruneAncestors(prefix)

	return removed
}

func (t *Trie) countAndClear(n *node) int {
	count := countSubtree(n)
	t.size -= count
	return count
}

// pruneAncestors re-walks from the root along the prefix path, removing
// any node left with neither an item nor children, from the deepest
// ancestor upward.
func (t *Trie) pruneAncestors(key []byte) {
	path := make([]*node, 0, len(key)+1)
	path = append(path, t.root)
	cur := t.root
	for _, c := range key {
		cur = cur.childAt(c)
		if cur == nil {
			break
		}
		path = append(path, cur)
	}
	for i := len(path) - 1; i > 0; i-- {
		n := path[i]
		if n.item == nil && n.isFree() {
			path[i-1].removeChild(key[i-1])
		} else {
			break
		}
	}
}

// PrefixCount returns the number of item-bearing nodes in the subtree
// below prefix. An empty prefix returns Size() directly.
func (t *Trie) PrefixCount(prefix []byte) int {
	if len(prefix) == 0 {
		return t.size
	}
	cursor := t.find(prefix)
	if cursor == nil {
		return 0
	}
	return countSubtree(cursor)
}

func countSubtree(n *node) int {
	count := 0
	if n.item != nil {
		count++
	}
	for _, child := range n.children {
		count += countSubtree(child)
	}
	return count
}

// PrefixSet replaces Data/TTL/Latime on every existing item under prefix.
// It never creates items where none existed — a deliberate policy
// preserved from the original implementation.
func (t *Trie) PrefixSet(prefix []byte, data []byte, ttl int32) {
	cursor := t.find(prefix)
	if cursor == nil {
		return
	}
	t.prefixSetRec(cursor, data, ttl)
}

func (t *Trie) prefixSetRec(n *node, data []byte, ttl int32) {
	for _, child := range n.children {
		t.prefixSetRec(child, data, ttl)
	}
	if n.item != nil {
		n.item.Data = append([]byte(nil), data...)
		n.item.TTL = ttl
		n.item.Latime = nowSeconds()
	}
}

// PrefixInc adds 1 to the decimal-integer value of every item under
// prefix whose Data parses as a signed integer; non-integer items are
// left untouched.
func (t *Trie) PrefixInc(prefix []byte) {
	t.prefixIntMod(prefix, 1)
}

// PrefixDec subtracts 1 from the decimal-integer value of every item
// under prefix whose Data parses as a signed integer.
func (t *Trie) PrefixDec(prefix []byte) {
	t.prefixIntMod(prefix, -1)
}

func (t *Trie) prefixIntMod(prefix []byte, delta int64) {
	cursor := t.find(prefix)
	if cursor == nil {
		return
	}
	t.intModRec(cursor, delta)
}

func (t *Trie) intModRec(n *node, delta int64) {
	if n.item != nil {
		if v, err := strconv.ParseInt(string(n.item.Data), 10, 64); err == nil {
			n.item.Data = []byte(strconv.FormatInt(v+delta, 10))
			n.item.Latime = nowSeconds()
		}
	}
	for _, child := range n.children {
		t.intModRec(child, delta)
	}
}

// Inc adds 1 to the decimal-integer value of the single item at key,
// leaving any descendants untouched. Returns false if key doesn't exist
// or its data doesn't parse as an integer.
func (t *Trie) Inc(key []byte) bool {
	return t.pointIntMod(key, 1)
}

// Dec subtracts 1 from the decimal-integer value of the single item at
// key, leaving any descendants untouched.
func (t *Trie) Dec(key []byte) bool {
	return t.pointIntMod(key, -1)
}

func (t *Trie) pointIntMod(key []byte, delta int64) bool {
	n := t.find(key)
	if n == nil || n.item == nil {
		return false
	}
	v, err := strconv.ParseInt(string(n.item.Data), 10, 64)
	if err != nil {
		return false
	}
	n.item.Data = []byte(strconv.FormatInt(v+delta, 10))
	n.item.Latime = nowSeconds()
	return true
}

// Enumerated pairs a fully reconstructed key with its Item, as produced by
// PrefixEnumerate.
type Enumerated struct {
	Key  []byte
	Item *Item
}

// PrefixEnumerate walks the subtree below prefix in pre-order, emitting
// every (full key, item) pair; sibling order follows chr ascending, so
// keys come out in lexicographic order under each prefix.
func (t *Trie) PrefixEnumerate(prefix []byte) []Enumerated {
	cursor := t.find(prefix)
	if cursor == nil {
		return nil
	}
	var out []Enumerated
	base := append([]byte(nil), prefix...)
	enumerateRec(cursor, base, &out)
	return out
}

func enumerateRec(n *node, key []byte, out *[]Enumerated) {
	if n.item != nil {
		*out = append(*out, Enumerated{Key: append([]byte(nil), key...), Item: n.item})
	}
	for _, child := range n.children {
		childKey := make([]byte, len(key)+1)
		copy(childKey, key)
		childKey[len(key)] = child.chr
		enumerateRec(child, childKey, out)
	}
}
