// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNoopRegistersEverything(t *testing.T) {
	m := NewNoop()
	assert.NotNil(t, m.Connections)
	m.RequestsTotal.WithLabelValues("PUT").Inc()
	m.KeysTotal.WithLabelValues("db0").Set(3)
}
