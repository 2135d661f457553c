// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritedb/tritedb/protocol"
)

func TestJoinRefusesWithNoPeers(t *testing.T) {
	n := New()
	assert.Equal(t, protocol.RCNok, n.Join())
	assert.Empty(t, n.Peers())
}

func TestLoadPeersFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peers:\n  - host: 10.0.0.2\n    port: 9191\n"), 0o644))

	n := New()
	require.NoError(t, n.LoadPeers(path))
	assert.Equal(t, []Peer{{Host: "10.0.0.2", Port: 9191}}, n.Peers())
	// JOIN still refuses — loading a peer list isn't the same as admitting one.
	assert.Equal(t, protocol.RCNok, n.Join())
}
