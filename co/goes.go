// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Goes to run and manage life-cycle of goroutines.
type Goes struct {
	wg sync.WaitGroup
}

// Go run f in a new goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait waits for all goroutines started by Go to return.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed when all goroutines have returned.
func (g *Goes) Done() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		g.wg.Wait()
	}()
	return ch
}
