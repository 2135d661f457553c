// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import (
	"bufio"

	"github.com/pkg/errors"
)

// MaxLengthBytes bounds the remaining-length field to at most 4 bytes,
// the same ceiling MQTT's variable-length encoding uses and enough to
// address lengths well past any sane max_request_size.
const MaxLengthBytes = 4

// ErrMalformedLength is returned when the remaining-length field's
// continuation bit never clears within MaxLengthBytes bytes.
var ErrMalformedLength = errors.New("protocol: malformed remaining-length field")

// EncodeLength appends the MQTT-style variable-width remaining-length
// encoding of n to dst: 7 value bits per byte, the top bit set on every
// byte but the last to signal continuation.
func EncodeLength(dst []byte, n int) []byte {
	for {
		b := byte(n % 128)
		n /= 128
		if n > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if n == 0 {
			break
		}
	}
	return dst
}

// DecodeLength reads a variable-width remaining-length field from r,
// returning the decoded value and the number of bytes consumed.
func DecodeLength(r *bufio.Reader) (int, int, error) {
	multiplier := 1
	value := 0
	consumed := 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, consumed, err
		}
		consumed++
		value += int(b&0x7f) * multiplier
		if b&0x80 == 0 {
			return value, consumed, nil
		}
		multiplier *= 128
		if consumed >= MaxLengthBytes {
			return 0, consumed, ErrMalformedLength
		}
	}
}
