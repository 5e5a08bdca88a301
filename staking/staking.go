// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking tracks what the protocol has sent to the consensus layer:
// total ETH deposited into validators and the count of validators ever
// initiated. The oracle validates incoming records against these caps.
package staking

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/log"
)

var logger = log.WithContext("pkg", "staking")

// Reader exposes the staking facts the oracle validates records against.
type Reader interface {
	// TotalDepositedInValidators returns the total ETH ever sent into
	// validators, in wei.
	TotalDepositedInValidators() (*big.Int, error)
	// NumInitiatedValidators returns the count of validators ever initiated.
	NumInitiatedValidators() (uint64, error)
	// InitializationBlockNumber returns the consensus-layer block at which
	// the staking system was initialized.
	InitializationBlockNumber() (uint64, error)
}

var (
	totalDepositedKey = []byte("total-deposited")
	numInitiatedKey   = []byte("num-initiated")
	initBlockKey      = []byte("init-block")
)

// Ledger is the kv-backed staking bookkeeping.
//
// Not safe for concurrent mutation; the owning component serializes writes.
type Ledger struct {
	store kv.GetPutter
}

var _ Reader = (*Ledger)(nil)

// NewLedger opens the ledger over the given store. initBlock seeds the
// initialization block number on first open and is ignored afterwards.
func NewLedger(store kv.GetPutter, initBlock uint64) (*Ledger, error) {
	l := &Ledger{store}
	has, err := store.Has(initBlockKey)
	if err != nil {
		return nil, err
	}
	if !has {
		if err := l.putUint64(initBlockKey, initBlock); err != nil {
			return nil, err
		}
		logger.Info("staking ledger initialized", "initBlock", initBlock)
	}
	return l, nil
}

// TotalDepositedInValidators implements Reader.
func (l *Ledger) TotalDepositedInValidators() (*big.Int, error) {
	data, err := l.store.Get(totalDepositedKey)
	if err != nil {
		if l.store.IsNotFound(err) {
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

// NumInitiatedValidators implements Reader.
func (l *Ledger) NumInitiatedValidators() (uint64, error) {
	return l.getUint64(numInitiatedKey)
}

// InitializationBlockNumber implements Reader.
func (l *Ledger) InitializationBlockNumber() (uint64, error) {
	return l.getUint64(initBlockKey)
}

// InitiateValidators records n newly initiated validators funded with the
// given total deposit amount.
func (l *Ledger) InitiateValidators(n uint64, depositAmount *big.Int) error {
	if n == 0 {
		return errors.New("zero validators")
	}
	count, err := l.getUint64(numInitiatedKey)
	if err != nil {
		return err
	}
	if err := l.putUint64(numInitiatedKey, count+n); err != nil {
		return err
	}
	if err := l.addDeposited(depositAmount); err != nil {
		return err
	}
	logger.Info("validators initiated", "n", n, "deposit", depositAmount)
	return nil
}

// TopUp records an additional deposit into already running validators.
func (l *Ledger) TopUp(amount *big.Int) error {
	if err := l.addDeposited(amount); err != nil {
		return err
	}
	logger.Info("validators topped up", "amount", amount)
	return nil
}

func (l *Ledger) addDeposited(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("deposit amount must be positive")
	}
	total, err := l.TotalDepositedInValidators()
	if err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(total.Add(total, amount))
	if err != nil {
		return err
	}
	return l.store.Put(totalDepositedKey, data)
}

func (l *Ledger) getUint64(key []byte) (uint64, error) {
	data, err := l.store.Get(key)
	if err != nil {
		if l.store.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}

func (l *Ledger) putUint64(key []byte, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return l.store.Put(key, b[:])
}
