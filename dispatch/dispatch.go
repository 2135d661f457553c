// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dispatch maps each protocol opcode onto the handler that
// carries it out against an engine.Engine, building the reply packet and
// the control signal the I/O reactor acts on afterwards.
package dispatch

import (
	"time"

	"github.com/tritedb/tritedb/cluster"
	"github.com/tritedb/tritedb/database"
	"github.com/tritedb/tritedb/engine"
	"github.com/tritedb/tritedb/log"
	"github.com/tritedb/tritedb/metrics"
	"github.com/tritedb/tritedb/protocol"
	"github.com/tritedb/tritedb/trie"
)

// Signal tells the I/O reactor what to do with the connection after a
// reply has been written.
type Signal int

const (
	// SignalNone keeps the connection open, awaiting the next request.
	SignalNone Signal = iota
	// SignalClose closes the connection after the reply is flushed.
	SignalClose
)

// Conn is the per-connection state a Dispatcher needs: which database is
// selected and when the connection was accepted. The I/O reactor owns
// the net.Conn itself; Conn only carries dispatch-relevant state.
type Conn struct {
	DB          string
	ConnectedAt int64
}

// NewConn returns a Conn with the default database selected.
func NewConn() *Conn {
	return &Conn{DB: database.DefaultName, ConnectedAt: time.Now().Unix()}
}

// Dispatcher owns the engine and metrics every handler reads and
// mutates, and the server-wide counters INFO reports.
type Dispatcher struct {
	Engine     *engine.Engine
	Metrics    *metrics.Metrics
	Cluster    *cluster.Node
	StartedAt  int64
	ConfigEcho string

	nClients     func() uint32
	nConnections uint64
	nRequests    uint64
	bytesRecv    uint64
	bytesSent    uint64
}

// New returns a ready-to-use Dispatcher. nClients reports the number of
// currently-open connections for INFO; the I/O reactor owns that count.
func New(e *engine.Engine, m *metrics.Metrics, c *cluster.Node, configEcho string, nClients func() uint32) *Dispatcher {
	return &Dispatcher{
		Engine:     e,
		Metrics:    m,
		Cluster:    c,
		StartedAt:  time.Now().Unix(),
		ConfigEcho: configEcho,
		nClients:   nClients,
	}
}

// SetClientCounter wires in the function INFO calls to report the number
// of currently open connections. The server constructs its listener
// after the Dispatcher it hands requests to, so this is set post
// construction rather than threaded through New.
func (d *Dispatcher) SetClientCounter(f func() uint32) { d.nClients = f }

// AddBytesRecv/AddBytesSent let the I/O reactor roll per-connection byte
// counts up into the server-wide counters INFO reports.
func (d *Dispatcher) AddBytesRecv(n uint64) { d.bytesRecv += n }
func (d *Dispatcher) AddBytesSent(n uint64) { d.bytesSent += n }

// NoteConnection records a newly accepted connection for INFO's
// connections-total counter.
func (d *Dispatcher) NoteConnection() { d.nConnections++ }

// Handle decodes and executes one request, returning the wire-encoded
// reply and the signal the I/O reactor should act on.
func (d *Dispatcher) Handle(conn *Conn, header protocol.Header, body []byte) ([]byte, Signal) {
	d.nRequests++
	if d.Metrics != nil {
		d.Metrics.RequestsTotal.WithLabelValues(header.Opcode.String()).Inc()
	}

	req, err := protocol.DecodeRequest(header, body)
	if err != nil {
		log.Debug("malformed request", "opcode", header.Opcode, "err", err)
		return protocol.EncodeAck(protocol.RCNok), SignalClose
	}

	switch r := req.(type) {
	case protocol.PutRequest:
		return d.handlePut(conn, r), SignalNone
	case protocol.KeyRequest:
		return d.handleKey(conn, header, r)
	case protocol.TTLRequest:
		return d.handleTTL(conn, r), SignalNone
	case protocol.SimpleRequest:
		return d.handleSimple(conn, header.Opcode)
	default:
		return protocol.EncodeAck(protocol.RCNok), SignalNone
	}
}

func (d *Dispatcher) handlePut(conn *Conn, r protocol.PutRequest) []byte {
	d.Engine.Put(conn.DB, r.Key, r.Val, r.TTL, r.Header.Prefix)
	return protocol.EncodeAck(protocol.RCOk)
}

func (d *Dispatcher) handleKey(conn *Conn, header protocol.Header, r protocol.KeyRequest) ([]byte, Signal) {
	switch header.Opcode {
	case protocol.OpGET:
		if header.Prefix {
			tuples := toTuples(d.Engine.GetPrefix(conn.DB, r.Key))
			if len(tuples) == 0 {
				return protocol.EncodeAck(protocol.RCNok), SignalNone
			}
			return protocol.EncodeGetPrefix(protocol.OpGET, tuples), SignalNone
		}
		item, ok := d.Engine.GetPoint(conn.DB, r.Key)
		if !ok {
			return protocol.EncodeAck(protocol.RCNok), SignalNone
		}
		return protocol.EncodeGetPoint(protocol.Tuple{TTL: item.TTL, Key: r.Key, Val: item.Data}), SignalNone

	case protocol.OpDEL:
		if header.Prefix {
			if n := d.Engine.PrefixDelete(conn.DB, r.Key); n > 0 {
				return protocol.EncodeAck(protocol.RCOk), SignalNone
			}
			return protocol.EncodeAck(protocol.RCNok), SignalNone
		}
		if d.Engine.Delete(conn.DB, r.Key) {
			return protocol.EncodeAck(protocol.RCOk), SignalNone
		}
		return protocol.EncodeAck(protocol.RCNok), SignalNone

	case protocol.OpINC:
		ok := d.Engine.IncDec(conn.DB, r.Key, 1, header.Prefix)
		return ackFor(ok), SignalNone

	case protocol.OpDEC:
		ok := d.Engine.IncDec(conn.DB, r.Key, -1, header.Prefix)
		return ackFor(ok), SignalNone

	case protocol.OpCNT:
		n := d.Engine.Count(conn.DB, r.Key, header.Prefix)
		return protocol.EncodeCount(uint64(n)), SignalNone

	case protocol.OpUSE:
		conn.DB = d.Engine.Use(string(r.Key))
		return protocol.EncodeDBName(conn.DB), SignalNone

	case protocol.OpKEYS:
		tuples := toTuples(d.Engine.GetPrefix(conn.DB, r.Key))
		return protocol.EncodeGetPrefix(protocol.OpKEYS, tuples), SignalNone

	default:
		return protocol.EncodeAck(protocol.RCNok), SignalNone
	}
}

func (d *Dispatcher) handleTTL(conn *Conn, r protocol.TTLRequest) []byte {
	if d.Engine.SetTTL(conn.DB, r.Key, r.TTL) {
		return protocol.EncodeAck(protocol.RCOk)
	}
	return protocol.EncodeAck(protocol.RCNok)
}

func (d *Dispatcher) handleSimple(conn *Conn, opcode protocol.Opcode) ([]byte, Signal) {
	switch opcode {
	case protocol.OpPING:
		return protocol.EncodeAck(protocol.RCOk), SignalNone

	case protocol.OpQUIT:
		return protocol.EncodeAck(protocol.RCOk), SignalClose

	case protocol.OpDB:
		return protocol.EncodeDBName(conn.DB), SignalNone

	case protocol.OpINFO:
		return protocol.EncodeInfo(d.infoSnapshot()), SignalNone

	case protocol.OpFLUSH:
		d.Engine.Flush(conn.DB)
		return protocol.EncodeAck(protocol.RCOk), SignalNone

	case protocol.OpJOIN:
		return protocol.EncodeAck(d.Cluster.Join()), SignalNone

	default:
		return protocol.EncodeAck(protocol.RCNok), SignalNone
	}
}

func (d *Dispatcher) infoSnapshot() protocol.Info {
	var nClients uint32
	if d.nClients != nil {
		nClients = d.nClients()
	}
	return protocol.Info{
		NClients:      nClients,
		NConnections:  uint32(d.nConnections),
		NRequests:     d.nRequests,
		BytesRecv:     d.bytesRecv,
		BytesSent:     d.bytesSent,
		NKeys:         d.Engine.KeyCount(),
		UptimeSeconds: uint64(time.Now().Unix() - d.StartedAt),
		ConfigEcho:    d.ConfigEcho,
	}
}

func toTuples(items []trie.Enumerated) []protocol.Tuple {
	tuples := make([]protocol.Tuple, len(items))
	for i, it := range items {
		tuples[i] = protocol.Tuple{TTL: it.Item.TTL, Key: it.Key, Val: it.Item.Data}
	}
	return tuples
}

func ackFor(ok bool) []byte {
	if ok {
		return protocol.EncodeAck(protocol.RCOk)
	}
	return protocol.EncodeAck(protocol.RCNok)
}
