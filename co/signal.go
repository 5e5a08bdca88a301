// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Waiter provides channel to wait for.
type Waiter interface {
	C() <-chan struct{}
}

// Signal is a rendezvous point for goroutines waiting for or announcing the
// occurrence of an event. It's friendlier than sync.Cond since it's channel
// based, so waiters can select on other channels at the same time.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	close(s.ch)
	s.ch = make(chan struct{})
}

// NewWaiter creates a Waiter for acquiring a channel to wait on.
// The channel is renewed after each broadcast, so a waiter loop should call
// C() again after every wakeup.
func (s *Signal) NewWaiter() Waiter {
	return waiterFunc(func() <-chan struct{} {
		s.l.Lock()
		defer s.l.Unlock()

		s.init()
		return s.ch
	})
}

type waiterFunc func() <-chan struct{}

func (w waiterFunc) C() <-chan struct{} { return w() }
