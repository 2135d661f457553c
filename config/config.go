// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the plain key=value configuration file described
// by the specification (log_level, log_path, unix_socket|ip_address,
// ip_port, max_memory, mem_reclaim_time, max_request_size, tcp_backlog,
// mode), with size and time suffixes, and merges it under whatever the
// CLI flags provide (flags win on conflict).
package config

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Mode is the run mode named by the "mode" config key / -m flag.
type Mode string

const (
	ModeStandalone Mode = "STANDALONE"
	ModeCluster    Mode = "CLUSTER"
)

// Config is the merged set of server settings.
type Config struct {
	LogLevel       string
	LogPath        string
	UnixSocket     string
	IPAddress      string
	IPPort         int
	MaxMemory      int64
	MemReclaimTime time.Duration
	MaxRequestSize int
	TCPBacklog     int
	Mode           Mode
}

// Default returns the built-in defaults, overridden by whatever a config
// file and CLI flags supply afterwards.
func Default() Config {
	return Config{
		LogLevel:       "INFO",
		IPAddress:      "127.0.0.1",
		IPPort:         9191,
		MaxMemory:      0, // 0 == unbounded
		MemReclaimTime: time.Minute,
		MaxRequestSize: 2 * 1024 * 1024,
		TCPBacklog:     128,
		Mode:           ModeStandalone,
	}
}

// Load reads a key=value config file, applying recognised keys onto cfg
// and returning the result. Unknown keys are ignored rather than
// rejected, the same latitude the specification leaves implementers.
func Load(path string, cfg Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "open config %q", path)
	}
	defer f.Close()
	return parse(f, cfg)
}

func parse(r io.Reader, cfg Config) (Config, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			key, val, ok = strings.Cut(line, "=")
			if !ok {
				continue
			}
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if err := apply(&cfg, key, val); err != nil {
			return cfg, errors.Wrapf(err, "config key %q", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(cfg *Config, key, val string) error {
	switch key {
	case "log_level":
		cfg.LogLevel = val
	case "log_path":
		cfg.LogPath = val
	case "unix_socket":
		cfg.UnixSocket = val
	case "ip_address":
		cfg.IPAddress = val
	case "ip_port":
		port, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.IPPort = port
	case "max_memory":
		n, err := ParseMemory(val)
		if err != nil {
			return err
		}
		cfg.MaxMemory = n
	case "mem_reclaim_time":
		d, err := ParseDuration(val)
		if err != nil {
			return err
		}
		cfg.MemReclaimTime = d
	case "max_request_size":
		n, err := ParseMemory(val)
		if err != nil {
			return err
		}
		cfg.MaxRequestSize = int(n)
	case "tcp_backlog":
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.TCPBacklog = n
	case "mode":
		cfg.Mode = Mode(strings.ToUpper(val))
	}
	return nil
}

// ParseMemory parses a digit string optionally suffixed with kb/mb/gb
// into a byte count.
func ParseMemory(s string) (int64, error) {
	s = strings.TrimSpace(s)
	mul := int64(1)
	digits := s
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "kb"):
		mul = 1024
		digits = s[:len(s)-2]
	case strings.HasSuffix(lower, "mb"):
		mul = 1024 * 1024
		digits = s[:len(s)-2]
	case strings.HasSuffix(lower, "gb"):
		mul = 1024 * 1024 * 1024
		digits = s[:len(s)-2]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse memory value %q", s)
	}
	return n * mul, nil
}

// ParseDuration parses a digit string optionally suffixed with m (minutes)
// or d (days) into a time.Duration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	unit := time.Second
	digits := s
	if strings.HasSuffix(s, "d") {
		unit = 24 * time.Hour
		digits = s[:len(s)-1]
	} else if strings.HasSuffix(s, "m") {
		unit = time.Minute
		digits = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration value %q", s)
	}
	return time.Duration(n) * unit, nil
}
