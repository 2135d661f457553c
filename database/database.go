// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package database implements the named-namespace registry: each
// Database owns exactly one trie, selected per connection via USE.
package database

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tritedb/tritedb/trie"
)

// DefaultName is the database created automatically at startup.
const DefaultName = "db0"

// Database is a named namespace owning one trie.
type Database struct {
	Name string
	Trie *trie.Trie

	sizeGauge prometheus.Gauge
}

func newDatabase(name string) *Database {
	return &Database{Name: name, Trie: trie.New()}
}

// Size returns the number of item-bearing nodes in the database's trie.
func (d *Database) Size() int { return d.Trie.Size() }

// SetSizeGauge wires the Prometheus gauge ReportSize pushes this
// database's size onto. Passing nil detaches it again.
func (d *Database) SetSizeGauge(g prometheus.Gauge) { d.sizeGauge = g }

// ReportSize pushes the trie's current size onto the wired gauge. A
// no-op if no gauge has been set via SetSizeGauge.
func (d *Database) ReportSize() {
	if d.sizeGauge != nil {
		d.sizeGauge.Set(float64(d.Trie.Size()))
	}
}

// Registry is the process-wide mapping from database name to Database. It
// is not safe for concurrent use on its own — callers hold the server's
// single writer lock while touching it, same as the trie and TTL index.
type Registry struct {
	byName map[string]*Database
	order  []string
}

// NewRegistry returns a Registry with the default database already
// created, mirroring the "db0 created at startup" lifecycle rule.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Database)}
	r.GetOrCreate(DefaultName)
	return r
}

// Get returns the database with the given name, or nil if it doesn't
// exist yet.
func (r *Registry) Get(name string) *Database {
	return r.byName[name]
}

// GetOrCreate returns the database with the given name, creating it (and
// registering it process-wide) if absent.
func (r *Registry) GetOrCreate(name string) *Database {
	if db, ok := r.byName[name]; ok {
		return db
	}
	db := newDatabase(name)
	r.byName[name] = db
	r.order = append(r.order, name)
	return db
}

// Flush empties the named database's trie in place, preserving the
// Database entry and its name. A no-op if the database doesn't exist.
func (r *Registry) Flush(name string) {
	db, ok := r.byName[name]
	if !ok {
		return
	}
	db.Trie = trie.New()
}

// Names returns every registered database name, in creation order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
