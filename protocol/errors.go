// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package protocol

import "github.com/pkg/errors"

// Error kinds from the specification's error-handling design: each is
// distinct so the I/O reactor can tell a protocol violation (drop the
// connection) from a merely-too-large request (also drop, but worth
// logging differently) from a clean EOF.
var (
	// ErrUnknownOpcode is returned when the header's opcode nibble names
	// no known command.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")

	// ErrOversizePacket is returned when the decoded remaining-length
	// exceeds the configured max_request_size.
	ErrOversizePacket = errors.New("protocol: packet exceeds max_request_size")

	// ErrTruncated is returned when a packet ends before its declared
	// body length has been fully read.
	ErrTruncated = errors.New("protocol: truncated packet")

	// ErrMalformedBody is returned when a body fails to decode structurally
	// (e.g. a keylen field longer than the remaining body).
	ErrMalformedBody = errors.New("protocol: malformed packet body")
)
