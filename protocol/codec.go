// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ReadPacket consumes one complete framed packet from r: the header byte,
// the variable-width remaining-length field, and exactly that many body
// bytes. It enforces maxRequestSize against the declared length before
// attempting to read the body, so an attacker-controlled huge length
// can't make the server allocate or block on never-arriving bytes.
func ReadPacket(r *bufio.Reader, maxRequestSize int) (Header, []byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return Header{}, nil, err
	}
	header := DecodeHeader(first)
	if !header.Opcode.Valid() {
		return header, nil, ErrUnknownOpcode
	}

	length, _, err := DecodeLength(r)
	if err != nil {
		if errors.Is(err, ErrMalformedLength) {
			return header, nil, err
		}
		return header, nil, ErrTruncated
	}
	if length > maxRequestSize {
		return header, nil, ErrOversizePacket
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return header, nil, ErrTruncated
	}
	return header, body, nil
}

// WritePacket frames header and body and writes the packet to w in one
// call.
func WritePacket(w io.Writer, header Header, body []byte) error {
	buf := make([]byte, 0, 1+MaxLengthBytes+len(body))
	buf = append(buf, header.Byte())
	buf = EncodeLength(buf, len(body))
	buf = append(buf, body...)
	_, err := w.Write(buf)
	return err
}

// EncodePacket returns the fully framed packet without writing it, for
// callers (like the dispatcher) that build a reply buffer to hand back to
// the I/O pool rather than writing directly.
func EncodePacket(header Header, body []byte) []byte {
	buf := make([]byte, 0, 1+MaxLengthBytes+len(body))
	buf = append(buf, header.Byte())
	buf = EncodeLength(buf, len(body))
	buf = append(buf, body...)
	return buf
}
