// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import "encoding/binary"

// Request is implemented by every decoded request body; Head returns the
// header it was decoded with so handlers can inspect flags (Prefix, in
// particular) without re-threading it separately.
type Request interface {
	Head() Header
}

// PutRequest carries the body of a PUT command: ttl, a length-prefixed
// key, and the value filling the remainder of the packet.
type PutRequest struct {
	Header Header
	TTL    int32
	Key    []byte
	Val    []byte
}

func (r PutRequest) Head() Header { return r.Header }

// KeyRequest carries the body shared by GET, DEL, INC, DEC, CNT, USE and
// KEYS: just a key filling the remainder of the packet.
type KeyRequest struct {
	Header Header
	Key    []byte
}

func (r KeyRequest) Head() Header { return r.Header }

// TTLRequest carries the body of a TTL command: a new ttl value and the
// target key.
type TTLRequest struct {
	Header Header
	TTL    int32
	Key    []byte
}

func (r TTLRequest) Head() Header { return r.Header }

// SimpleRequest carries no body beyond the header: PING, QUIT, DB, INFO,
// FLUSH, JOIN.
type SimpleRequest struct {
	Header Header
}

func (r SimpleRequest) Head() Header { return r.Header }

// DecodeRequest decodes body according to header.Opcode, returning one of
// the Request implementations above.
func DecodeRequest(header Header, body []byte) (Request, error) {
	switch header.Opcode {
	case OpPUT:
		if len(body) < 6 {
			return nil, ErrMalformedBody
		}
		ttl := int32(binary.BigEndian.Uint32(body[0:4]))
		keylen := int(binary.BigEndian.Uint16(body[4:6]))
		if len(body) < 6+keylen {
			return nil, ErrMalformedBody
		}
		key := body[6 : 6+keylen]
		val := body[6+keylen:]
		return PutRequest{Header: header, TTL: ttl, Key: key, Val: val}, nil

	case OpGET, OpDEL, OpINC, OpDEC, OpCNT, OpUSE, OpKEYS:
		return KeyRequest{Header: header, Key: body}, nil

	case OpTTL:
		if len(body) < 4 {
			return nil, ErrMalformedBody
		}
		ttl := int32(binary.BigEndian.Uint32(body[0:4]))
		return TTLRequest{Header: header, TTL: ttl, Key: body[4:]}, nil

	case OpPING, OpQUIT, OpDB, OpINFO, OpFLUSH, OpJOIN, OpACK:
		return SimpleRequest{Header: header}, nil

	default:
		return nil, ErrUnknownOpcode
	}
}

// EncodePut builds the wire body of a PUT request.
func EncodePut(ttl int32, key, val []byte) []byte {
	body := make([]byte, 0, 6+len(key)+len(val))
	body = binary.BigEndian.AppendUint32(body, uint32(ttl))
	body = binary.BigEndian.AppendUint16(body, uint16(len(key)))
	body = append(body, key...)
	body = append(body, val...)
	return body
}

// EncodeTTL builds the wire body of a TTL request.
func EncodeTTL(ttl int32, key []byte) []byte {
	body := make([]byte, 0, 4+len(key))
	body = binary.BigEndian.AppendUint32(body, uint32(ttl))
	body = append(body, key...)
	return body
}
