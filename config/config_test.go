// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemorySuffixes(t *testing.T) {
	cases := map[string]int64{
		"1024":  1024,
		"1kb":   1024,
		"2mb":   2 * 1024 * 1024,
		"1gb":   1024 * 1024 * 1024,
		"10KB":  10 * 1024,
		" 4mb ": 4 * 1024 * 1024,
	}
	for in, want := range cases {
		got, err := ParseMemory(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDurationSuffixes(t *testing.T) {
	got, err := ParseDuration("5m")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, got)

	got, err = ParseDuration("2d")
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, got)

	got, err = ParseDuration("30")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, got)
}

func TestParseFileOverridesDefaults(t *testing.T) {
	src := strings.NewReader(`
# comment lines are ignored
log_level INFO
ip_address 0.0.0.0
ip_port 9292
max_memory 64mb
mem_reclaim_time 1m
mode cluster
`)
	cfg, err := parse(src, Default())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.IPAddress)
	assert.Equal(t, 9292, cfg.IPPort)
	assert.Equal(t, int64(64*1024*1024), cfg.MaxMemory)
	assert.Equal(t, time.Minute, cfg.MemReclaimTime)
	assert.Equal(t, ModeCluster, cfg.Mode)
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	src := strings.NewReader("totally_unknown_key value\nip_port 1234\n")
	cfg, err := parse(src, Default())
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.IPPort)
}
