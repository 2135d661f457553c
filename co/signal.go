// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Signal is a zero-value-usable broadcast: Broadcast wakes every Waiter
// registered so far and then resets, so the Signal can be reused for the
// next round. A Waiter registered after a Broadcast is not woken by that
// past Broadcast — only by a later one. Used by the server to fan a single
// shutdown notice out to every pool.
type Signal struct {
	mu sync.Mutex
	c  chan struct{}
}

// Waiter is a single registration against a Signal.
type Waiter struct {
	c <-chan struct{}
}

// C returns the channel that closes on the next Broadcast.
func (w Waiter) C() <-chan struct{} {
	return w.c
}

// NewWaiter registers a new Waiter against the signal.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		s.c = make(chan struct{})
	}
	return Waiter{c: s.c}
}

// Broadcast wakes every current Waiter and resets the signal for the next
// round.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		close(s.c)
		s.c = nil
	}
}
