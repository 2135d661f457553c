// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dispatch

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritedb/tritedb/cluster"
	"github.com/tritedb/tritedb/engine"
	"github.com/tritedb/tritedb/metrics"
	"github.com/tritedb/tritedb/protocol"
	"github.com/tritedb/tritedb/trie"
)

const noTTL = trie.NoTTL

func newTestDispatcher() *Dispatcher {
	return New(engine.New(), metrics.NewNoop(), cluster.New(), "mode=STANDALONE", func() uint32 { return 1 })
}

func TestPutThenGetPoint(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, sig := d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("hello"), []byte("world")))
	assert.Equal(t, SignalNone, sig)
	assertAck(t, reply, protocol.RCOk)

	reply, sig = d.Handle(conn, protocol.Header{Opcode: protocol.OpGET}, []byte("hello"))
	assert.Equal(t, SignalNone, sig)
	_, body, err := readReply(reply)
	require.NoError(t, err)
	tuple, err := protocol.DecodeGetPoint(body)
	require.NoError(t, err)
	assert.Equal(t, "world", string(tuple.Val))
}

func TestGetPointMissing(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpGET}, []byte("missing"))
	assertAck(t, reply, protocol.RCNok)
}

func TestGetPrefix(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("ab"), []byte("1")))
	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("ac"), []byte("2")))

	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpGET, Prefix: true}, []byte("a"))
	_, body, err := readReply(reply)
	require.NoError(t, err)
	tuples, err := protocol.DecodeGetPrefix(body)
	require.NoError(t, err)
	assert.Len(t, tuples, 2)
}

func TestGetPrefixEmptyRepliesNok(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, sig := d.Handle(conn, protocol.Header{Opcode: protocol.OpGET, Prefix: true}, []byte("nothere"))
	assert.Equal(t, SignalNone, sig)
	assertAck(t, reply, protocol.RCNok)
}

func TestDeletePrefix(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("ab"), []byte("1")))
	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("ac"), []byte("2")))

	reply, sig := d.Handle(conn, protocol.Header{Opcode: protocol.OpDEL, Prefix: true}, []byte("a"))
	assert.Equal(t, SignalNone, sig)
	assertAck(t, reply, protocol.RCOk)

	reply, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpGET, Prefix: true}, []byte("a"))
	assertAck(t, reply, protocol.RCNok)
}

func TestDeletePrefixMissingRepliesNok(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpDEL, Prefix: true}, []byte("nothere"))
	assertAck(t, reply, protocol.RCNok)
}

func TestMalformedRequestClosesConnection(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, sig := d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, []byte("short"))
	assert.Equal(t, SignalClose, sig)
	assertAck(t, reply, protocol.RCNok)
}

func TestDeletePoint(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("k"), []byte("v")))
	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpDEL}, []byte("k"))
	assertAck(t, reply, protocol.RCOk)

	reply, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpGET}, []byte("k"))
	assertAck(t, reply, protocol.RCNok)
}

func TestIncDecPoint(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("n"), []byte("41")))
	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpINC}, []byte("n"))
	assertAck(t, reply, protocol.RCOk)

	reply, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpGET}, []byte("n"))
	_, body, err := readReply(reply)
	require.NoError(t, err)
	tuple, err := protocol.DecodeGetPoint(body)
	require.NoError(t, err)
	assert.Equal(t, "42", string(tuple.Val))
}

func TestUseSwitchesDatabase(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpUSE}, []byte("other"))
	_, body, err := readReply(reply)
	require.NoError(t, err)
	assert.Equal(t, "other", string(body))
	assert.Equal(t, "other", conn.DB)
}

func TestPingAndQuit(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, sig := d.Handle(conn, protocol.Header{Opcode: protocol.OpPING}, nil)
	assert.Equal(t, SignalNone, sig)
	assertAck(t, reply, protocol.RCOk)

	reply, sig = d.Handle(conn, protocol.Header{Opcode: protocol.OpQUIT}, nil)
	assert.Equal(t, SignalClose, sig)
	assertAck(t, reply, protocol.RCOk)
}

func TestJoinAlwaysRefuses(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpJOIN}, nil)
	assertAck(t, reply, protocol.RCNok)
}

func TestInfoReportsKeyCount(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("k"), []byte("v")))
	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpINFO}, nil)
	_, body, err := readReply(reply)
	require.NoError(t, err)
	info, err := protocol.DecodeInfo(body)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.NKeys)
}

func TestFlushEmptiesDatabase(t *testing.T) {
	d := newTestDispatcher()
	conn := NewConn()

	_, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpPUT}, protocol.EncodePut(noTTL, []byte("k"), []byte("v")))
	reply, _ := d.Handle(conn, protocol.Header{Opcode: protocol.OpFLUSH}, nil)
	assertAck(t, reply, protocol.RCOk)

	reply, _ = d.Handle(conn, protocol.Header{Opcode: protocol.OpGET}, []byte("k"))
	assertAck(t, reply, protocol.RCNok)
}

func assertAck(t *testing.T, pkt []byte, want byte) {
	t.Helper()
	_, body, err := readReply(pkt)
	require.NoError(t, err)
	rc, err := protocol.DecodeAck(body)
	require.NoError(t, err)
	assert.Equal(t, want, rc)
}

func readReply(pkt []byte) (protocol.Header, []byte, error) {
	return protocol.ReadPacket(bufio.NewReader(bytes.NewReader(pkt)), 1<<20)
}
