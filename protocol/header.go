// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

const (
	flagPrefix  byte = 1 << 3
	flagSync    byte = 1 << 2
	flagRequest byte = 1 << 1
	flagMask    byte = 0x0f
)

// Header is the first byte of every packet: a 4-bit opcode and 3 used
// flag bits (prefix, sync, request) plus one reserved bit.
type Header struct {
	Opcode  Opcode
	Prefix  bool
	Sync    bool
	Request bool
}

// Byte packs the header into its single wire byte.
func (h Header) Byte() byte {
	b := byte(h.Opcode) << 4
	if h.Prefix {
		b |= flagPrefix
	}
	if h.Sync {
		b |= flagSync
	}
	if h.Request {
		b |= flagRequest
	}
	return b
}

// DecodeHeader unpacks the wire header byte.
func DecodeHeader(b byte) Header {
	return Header{
		Opcode:  Opcode(b >> 4),
		Prefix:  b&flagPrefix != 0,
		Sync:    b&flagSync != 0,
		Request: b&flagRequest != 0,
	}
}
