// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package returns receives confirmed consensus-layer reward and principal
// amounts from the oracle and aggregates them for the rest of the protocol.
package returns

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/co"
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/log"
)

var logger = log.WithContext("pkg", "returns")

// Aggregator is the downstream consumer of confirmed returns.
// Idempotency and ordering are the aggregator's concern; the oracle only
// guarantees each disclosed amount is forwarded exactly once.
type Aggregator interface {
	// ProcessReturns ingests window reward and principal amounts.
	// includeELRewards tells whether the amounts should be treated as
	// carrying execution-layer rewards; retroactive corrections pass false
	// so already-processed flows are not double counted.
	ProcessReturns(reward, principal *big.Int, includeELRewards bool) error
}

// Totals is the aggregate view of everything processed so far.
type Totals struct {
	Rewards         *big.Int
	RewardsNoEL     *big.Int
	Principal       *big.Int
	ProcessedEvents uint64
}

var (
	rewardsKey     = []byte("rewards")
	rewardsNoELKey = []byte("rewards-no-el")
	principalKey   = []byte("principal")
	eventsKey      = []byte("events")
)

// Accumulator is the kv-backed Aggregator implementation.
//
// Not safe for concurrent mutation; the oracle serializes calls.
type Accumulator struct {
	store  kv.GetPutter
	ticker co.Signal
}

var _ Aggregator = (*Accumulator)(nil)

// NewAccumulator opens the accumulator over the given store.
func NewAccumulator(store kv.GetPutter) *Accumulator {
	return &Accumulator{store: store}
}

// ProcessReturns implements Aggregator.
func (a *Accumulator) ProcessReturns(reward, principal *big.Int, includeELRewards bool) error {
	if reward == nil || principal == nil {
		return errors.New("nil amount")
	}
	if reward.Sign() < 0 || principal.Sign() < 0 {
		return errors.New("negative amount")
	}

	totals, err := a.Totals()
	if err != nil {
		return err
	}
	if includeELRewards {
		totals.Rewards.Add(totals.Rewards, reward)
	} else {
		totals.RewardsNoEL.Add(totals.RewardsNoEL, reward)
	}
	totals.Principal.Add(totals.Principal, principal)
	totals.ProcessedEvents++

	if err := a.saveTotals(totals); err != nil {
		return err
	}

	logger.Info("returns processed",
		"reward", reward,
		"principal", principal,
		"includeELRewards", includeELRewards,
	)
	a.ticker.Broadcast()
	return nil
}

// Totals returns the aggregate processed amounts.
func (a *Accumulator) Totals() (*Totals, error) {
	rewards, err := a.getBig(rewardsKey)
	if err != nil {
		return nil, err
	}
	rewardsNoEL, err := a.getBig(rewardsNoELKey)
	if err != nil {
		return nil, err
	}
	principal, err := a.getBig(principalKey)
	if err != nil {
		return nil, err
	}
	events, err := a.getBig(eventsKey)
	if err != nil {
		return nil, err
	}
	return &Totals{
		Rewards:         rewards,
		RewardsNoEL:     rewardsNoEL,
		Principal:       principal,
		ProcessedEvents: events.Uint64(),
	}, nil
}

// NewTicker creates a waiter signaled on each processed return.
func (a *Accumulator) NewTicker() co.Waiter {
	return a.ticker.NewWaiter()
}

func (a *Accumulator) saveTotals(t *Totals) error {
	if err := a.putBig(rewardsKey, t.Rewards); err != nil {
		return err
	}
	if err := a.putBig(rewardsNoELKey, t.RewardsNoEL); err != nil {
		return err
	}
	if err := a.putBig(principalKey, t.Principal); err != nil {
		return err
	}
	return a.putBig(eventsKey, new(big.Int).SetUint64(t.ProcessedEvents))
}

func (a *Accumulator) getBig(key []byte) (*big.Int, error) {
	data, err := a.store.Get(key)
	if err != nil {
		if a.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	var v big.Int
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (a *Accumulator) putBig(key []byte, v *big.Int) error {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	return a.store.Put(key, data)
}
