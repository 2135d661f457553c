// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cluster reserves the shape of a future peer bus: today Node
// admits no peers (it only records a static list loaded by LoadPeers) and
// answers every JOIN with a clean refusal, but the
// registration/lookup surface is where peer announce-and-merge would
// land, mirrored on the teacher's peer-table pattern reduced to a
// no-op.
package cluster

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tritedb/tritedb/protocol"
)

// Peer is a single cluster member address, as listed in the peers file
// LoadPeers reads. Nothing
// in this implementation dials a Peer yet; the type exists so the wire
// shape of a future announce is already settled.
type Peer struct {
	Host string
	Port int
}

// Node is this instance's view of the cluster. The zero value is a
// single-node cluster with no peers, which is the only supported mode.
type Node struct {
	mu    sync.Mutex
	peers []Peer
}

// New returns a Node with no known peers.
func New() *Node {
	return &Node{}
}

// Join always refuses: this implementation never admits a peer, so every
// JOIN request gets RCNok, the "no peers" answer.
func (n *Node) Join() byte {
	return protocol.RCNok
}

// Peers returns the currently known peer set: whatever LoadPeers last
// loaded, or empty if it was never called.
func (n *Node) Peers() []Peer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Peer(nil), n.peers...)
}

// peersFile is the on-disk shape of a static peer list, kept as a
// structured config block (YAML, unlike the flat key=value server
// config) since it's a list of records rather than scalars.
type peersFile struct {
	Peers []Peer `yaml:"peers"`
}

// LoadPeers reads a YAML peer list from path and records it on n. No
// admission happens as a result — Join still always refuses — this only
// seeds the set Peers() reports, for a future bus to dial out to.
func (n *Node) LoadPeers(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read peers file %q", path)
	}
	var pf peersFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return errors.Wrapf(err, "parse peers file %q", path)
	}
	n.mu.Lock()
	n.peers = pf.Peers
	n.mu.Unlock()
	return nil
}
