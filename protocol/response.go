// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import "encoding/binary"

// Return codes carried by an ACK response body.
const (
	RCOk  byte = 0
	RCNok byte = 1
)

// Tuple is one key/value/ttl triple, the unit GET and KEYS responses are
// built from.
type Tuple struct {
	TTL int32
	Key []byte
	Val []byte
}

func encodeTuple(dst []byte, t Tuple) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(t.TTL))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(t.Key)))
	dst = append(dst, t.Key...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(t.Val)))
	dst = append(dst, t.Val...)
	return dst
}

func decodeTuple(body []byte) (Tuple, int, error) {
	if len(body) < 8 {
		return Tuple{}, 0, ErrMalformedBody
	}
	ttl := int32(binary.BigEndian.Uint32(body[0:4]))
	keylen := int(binary.BigEndian.Uint16(body[4:6]))
	off := 6
	if len(body) < off+keylen+2 {
		return Tuple{}, 0, ErrMalformedBody
	}
	key := body[off : off+keylen]
	off += keylen
	vallen := int(binary.BigEndian.Uint16(body[off : off+2]))
	off += 2
	if len(body) < off+vallen {
		return Tuple{}, 0, ErrMalformedBody
	}
	val := body[off : off+vallen]
	off += vallen
	return Tuple{TTL: ttl, Key: key, Val: val}, off, nil
}

// EncodeAck builds an ACK response packet with the given return code.
func EncodeAck(rc byte) []byte {
	return EncodePacket(Header{Opcode: OpACK}, []byte{rc})
}

// EncodeGetPoint builds a point GET reply: a single tuple.
func EncodeGetPoint(t Tuple) []byte {
	body := encodeTuple(nil, t)
	return EncodePacket(Header{Opcode: OpGET}, body)
}

// EncodeGetPrefix builds a prefix GET/KEYS reply: a tuple count followed
// by that many tuples.
func EncodeGetPrefix(opcode Opcode, tuples []Tuple) []byte {
	body := make([]byte, 0, 2)
	body = binary.BigEndian.AppendUint16(body, uint16(len(tuples)))
	for _, t := range tuples {
		body = encodeTuple(body, t)
	}
	return EncodePacket(Header{Opcode: opcode, Prefix: true}, body)
}

// EncodeCount builds a CNT response carrying a 64-bit count.
func EncodeCount(val uint64) []byte {
	body := binary.BigEndian.AppendUint64(nil, val)
	return EncodePacket(Header{Opcode: OpCNT}, body)
}

// EncodeDBName builds a DB response carrying the selected database name.
func EncodeDBName(name string) []byte {
	return EncodePacket(Header{Opcode: OpDB}, []byte(name))
}

// Info is the counter snapshot reported by the INFO command.
type Info struct {
	NClients      uint32
	NConnections  uint32
	NRequests     uint64
	BytesRecv     uint64
	BytesSent     uint64
	NKeys         uint64
	UptimeSeconds uint64
	ConfigEcho    string
}

// EncodeInfo packs an Info snapshot into an INFO response body.
func EncodeInfo(info Info) []byte {
	body := make([]byte, 0, 4+4+8*5+len(info.ConfigEcho))
	body = binary.BigEndian.AppendUint32(body, info.NClients)
	body = binary.BigEndian.AppendUint32(body, info.NConnections)
	body = binary.BigEndian.AppendUint64(body, info.NRequests)
	body = binary.BigEndian.AppendUint64(body, info.BytesRecv)
	body = binary.BigEndian.AppendUint64(body, info.BytesSent)
	body = binary.BigEndian.AppendUint64(body, info.NKeys)
	body = binary.BigEndian.AppendUint64(body, info.UptimeSeconds)
	body = append(body, info.ConfigEcho...)
	return EncodePacket(Header{Opcode: OpINFO}, body)
}

// DecodeInfo is the inverse of EncodeInfo, used by test/debug clients.
func DecodeInfo(body []byte) (Info, error) {
	if len(body) < 4+4+8*5 {
		return Info{}, ErrMalformedBody
	}
	var info Info
	off := 0
	info.NClients = binary.BigEndian.Uint32(body[off:])
	off += 4
	info.NConnections = binary.BigEndian.Uint32(body[off:])
	off += 4
	info.NRequests = binary.BigEndian.Uint64(body[off:])
	off += 8
	info.BytesRecv = binary.BigEndian.Uint64(body[off:])
	off += 8
	info.BytesSent = binary.BigEndian.Uint64(body[off:])
	off += 8
	info.NKeys = binary.BigEndian.Uint64(body[off:])
	off += 8
	info.UptimeSeconds = binary.BigEndian.Uint64(body[off:])
	off += 8
	info.ConfigEcho = string(body[off:])
	return info, nil
}

// DecodeGetPoint is the inverse of EncodeGetPoint, used by test/debug
// clients.
func DecodeGetPoint(body []byte) (Tuple, error) {
	t, _, err := decodeTuple(body)
	return t, err
}

// DecodeGetPrefix is the inverse of EncodeGetPrefix.
func DecodeGetPrefix(body []byte) ([]Tuple, error) {
	if len(body) < 2 {
		return nil, ErrMalformedBody
	}
	n := int(binary.BigEndian.Uint16(body[0:2]))
	off := 2
	tuples := make([]Tuple, 0, n)
	for i := 0; i < n; i++ {
		t, consumed, err := decodeTuple(body[off:])
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, t)
		off += consumed
	}
	return tuples, nil
}

// DecodeCount is the inverse of EncodeCount.
func DecodeCount(body []byte) (uint64, error) {
	if len(body) < 8 {
		return 0, ErrMalformedBody
	}
	return binary.BigEndian.Uint64(body), nil
}

// DecodeAck is the inverse of EncodeAck.
func DecodeAck(body []byte) (byte, error) {
	if len(body) < 1 {
		return 0, ErrMalformedBody
	}
	return body[0], nil
}
