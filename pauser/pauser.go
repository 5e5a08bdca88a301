// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pauser implements the protocol-wide circuit breaker. The oracle
// pauses everything when a record fails sanity checks; governance resumes
// once the anomaly is resolved.
package pauser

import (
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/log"
)

var logger = log.WithContext("pkg", "pauser")

// Controller is the pause surface the oracle depends on.
type Controller interface {
	IsSubmitPaused() (bool, error)
	PauseAll() error
}

var pausedKey = []byte("paused")

// Pauser is the kv-backed pause flag.
type Pauser struct {
	store kv.GetPutter
}

var _ Controller = (*Pauser)(nil)

// New opens the pauser over the given store.
func New(store kv.GetPutter) *Pauser {
	return &Pauser{store}
}

// IsSubmitPaused returns whether record submission is paused.
func (p *Pauser) IsSubmitPaused() (bool, error) {
	return p.store.Has(pausedKey)
}

// PauseAll pauses the whole protocol.
func (p *Pauser) PauseAll() error {
	if err := p.store.Put(pausedKey, []byte{1}); err != nil {
		return err
	}
	logger.Warn("protocol paused")
	return nil
}

// ResumeAll lifts the pause. Callers gate this behind the admin role.
func (p *Pauser) ResumeAll() error {
	if err := p.store.Delete(pausedKey); err != nil {
		return err
	}
	logger.Info("protocol resumed")
	return nil
}
