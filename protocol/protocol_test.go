// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 16383, 16384, 2097151, 2097152} {
		buf := EncodeLength(nil, n)
		got, consumed, err := DecodeLength(bufio.NewReader(bytes.NewReader(buf)))
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(buf), consumed)
	}
}

func TestReadWritePacketRoundTrip(t *testing.T) {
	body := EncodePut(60, []byte("hello"), []byte("world"))
	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, Header{Opcode: OpPUT, Request: true}, body))

	r := bufio.NewReader(&buf)
	header, gotBody, err := ReadPacket(r, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, OpPUT, header.Opcode)
	assert.True(t, header.Request)
	assert.Equal(t, body, gotBody)
}

func TestReadPacketOversize(t *testing.T) {
	body := make([]byte, 100)
	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, Header{Opcode: OpPUT}, body))

	_, _, err := ReadPacket(bufio.NewReader(&buf), 10)
	assert.ErrorIs(t, err, ErrOversizePacket)
}

func TestReadPacketTruncated(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(Header{Opcode: OpGET}.Byte())
	buf.Write(EncodeLength(nil, 10))
	buf.Write([]byte("short"))

	_, _, err := ReadPacket(bufio.NewReader(&buf), 1<<20)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeHeaderTopNibbleIsValidOpcode(t *testing.T) {
	// All 16 opcode nibble values are defined, so ReadPacket's
	// unknown-opcode branch can't be reached from a real header byte; this
	// checks that the highest nibble (0xf) decodes to the valid JOIN opcode.
	h := DecodeHeader(0xf0)
	assert.True(t, h.Opcode.Valid())
	assert.Equal(t, OpJOIN, h.Opcode)
}

func TestDecodeRequestPut(t *testing.T) {
	body := EncodePut(42, []byte("k"), []byte("v"))
	req, err := DecodeRequest(Header{Opcode: OpPUT}, body)
	require.NoError(t, err)
	put := req.(PutRequest)
	assert.Equal(t, int32(42), put.TTL)
	assert.Equal(t, "k", string(put.Key))
	assert.Equal(t, "v", string(put.Val))
}

func TestDecodeRequestMalformedPut(t *testing.T) {
	_, err := DecodeRequest(Header{Opcode: OpPUT}, []byte{0, 0})
	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestDecodeRequestKey(t *testing.T) {
	req, err := DecodeRequest(Header{Opcode: OpGET}, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(req.(KeyRequest).Key))
}

func TestDecodeRequestTTL(t *testing.T) {
	body := EncodeTTL(30, []byte("k"))
	req, err := DecodeRequest(Header{Opcode: OpTTL}, body)
	require.NoError(t, err)
	ttlReq := req.(TTLRequest)
	assert.Equal(t, int32(30), ttlReq.TTL)
	assert.Equal(t, "k", string(ttlReq.Key))
}

func TestAckRoundTrip(t *testing.T) {
	pkt := EncodeAck(RCOk)
	r := bufio.NewReader(bytes.NewReader(pkt))
	header, body, err := ReadPacket(r, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, OpACK, header.Opcode)
	rc, err := DecodeAck(body)
	require.NoError(t, err)
	assert.Equal(t, RCOk, rc)
}

func TestGetPointRoundTrip(t *testing.T) {
	pkt := EncodeGetPoint(Tuple{TTL: -1, Key: []byte("hello"), Val: []byte("world")})
	_, body, err := ReadPacket(bufio.NewReader(bytes.NewReader(pkt)), 1<<20)
	require.NoError(t, err)
	tuple, err := DecodeGetPoint(body)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), tuple.TTL)
	assert.Equal(t, "hello", string(tuple.Key))
	assert.Equal(t, "world", string(tuple.Val))
}

func TestGetPrefixRoundTrip(t *testing.T) {
	tuples := []Tuple{
		{TTL: -1, Key: []byte("a"), Val: []byte("1")},
		{TTL: -1, Key: []byte("ab"), Val: []byte("2")},
	}
	pkt := EncodeGetPrefix(OpGET, tuples)
	header, body, err := ReadPacket(bufio.NewReader(bytes.NewReader(pkt)), 1<<20)
	require.NoError(t, err)
	assert.True(t, header.Prefix)
	got, err := DecodeGetPrefix(body)
	require.NoError(t, err)
	assert.Equal(t, tuples, got)
}

func TestCountRoundTrip(t *testing.T) {
	pkt := EncodeCount(42)
	_, body, err := ReadPacket(bufio.NewReader(bytes.NewReader(pkt)), 1<<20)
	require.NoError(t, err)
	val, err := DecodeCount(body)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), val)
}

func TestInfoRoundTrip(t *testing.T) {
	info := Info{
		NClients: 3, NConnections: 3, NRequests: 100,
		BytesRecv: 1024, BytesSent: 2048, NKeys: 7,
		UptimeSeconds: 60, ConfigEcho: "mode=STANDALONE",
	}
	pkt := EncodeInfo(info)
	_, body, err := ReadPacket(bufio.NewReader(bytes.NewReader(pkt)), 1<<20)
	require.NoError(t, err)
	got, err := DecodeInfo(body)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
