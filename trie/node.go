// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import "sort"

// node is one edge-labelled vertex of the trie: chr is the key byte that
// leads to it, children is kept sorted ascending by chr (no duplicates),
// and item is non-nil iff the path from the root to this node spells a
// complete inserted key.
type node struct {
	chr      byte
	children []*node
	item     *Item
}

// indexOf returns the position of the child labelled c, or the position it
// would be inserted at and ok=false. children is short (bounded by the
// alphabet size) so a binary search over the sorted slice is a solid match
// for the trie's ordering invariant without needing a map per node.
func (n *node) indexOf(c byte) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].chr >= c
	})
	if i < len(n.children) && n.children[i].chr == c {
		return i, true
	}
	return i, false
}

func (n *node) childAt(c byte) *node {
	i, ok := n.indexOf(c)
	if !ok {
		return nil
	}
	return n.children[i]
}

// childOrCreate returns the child labelled c, creating and inserting it at
// the correct sorted position if absent.
func (n *node) childOrCreate(c byte) *node {
	i, ok := n.indexOf(c)
	if ok {
		return n.children[i]
	}
	child := &node{chr: c}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	return child
}

// removeChild deletes the child labelled c, if present.
func (n *node) removeChild(c byte) {
	i, ok := n.indexOf(c)
	if !ok {
		return
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
}

func (n *node) isFree() bool {
	return len(n.children) == 0
}
