// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package record defines the attested consensus-layer state window that the
// oracle ingests. A record summarizes validator balances, deposit processing
// and withdrawals over a contiguous, inclusive block range.
package record

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meridianstake/meridian/meridian"
)

// Record is an attested summary of consensus-layer validator state covering
// the inclusive block range [UpdateStartBlock, UpdateEndBlock].
//
// Window* amounts cover this window only; Cumulative* counters are totals
// over the whole life of the staking system and never decrease across an
// accepted record sequence.
type Record struct {
	UpdateStartBlock uint64
	UpdateEndBlock   uint64

	CurrentTotalValidatorBalance        *big.Int
	CumulativeNumValidatorsWithdrawable uint64
	CurrentNumValidatorsNotWithdrawable uint64
	CumulativeProcessedDepositAmount    *big.Int

	WindowWithdrawnRewardAmount    *big.Int
	WindowWithdrawnPrincipalAmount *big.Int
}

// Genesis builds the sentinel record seeded at initialization. It covers
// [0, initBlock] with all-zero counters, so the first real record starts at
// initBlock+1.
func Genesis(initBlock uint64) *Record {
	return &Record{
		UpdateStartBlock:                 0,
		UpdateEndBlock:                   initBlock,
		CurrentTotalValidatorBalance:     new(big.Int),
		CumulativeProcessedDepositAmount: new(big.Int),
		WindowWithdrawnRewardAmount:      new(big.Int),
		WindowWithdrawnPrincipalAmount:   new(big.Int),
	}
}

// WindowSizeBlocks returns the number of blocks the window covers. The block
// range is inclusive on both ends.
func (r *Record) WindowSizeBlocks() uint64 {
	return r.UpdateEndBlock - r.UpdateStartBlock + 1
}

// TotalNumValidators returns the count of all validators ever initiated that
// this record accounts for, withdrawable or not.
func (r *Record) TotalNumValidators() uint64 {
	return r.CurrentNumValidatorsNotWithdrawable + r.CumulativeNumValidatorsWithdrawable
}

// SameRange returns whether o covers exactly the same block range.
func (r *Record) SameRange(o *Record) bool {
	return r.UpdateStartBlock == o.UpdateStartBlock && r.UpdateEndBlock == o.UpdateEndBlock
}

// Copy makes a deep copy.
func (r *Record) Copy() *Record {
	c := *r
	c.CurrentTotalValidatorBalance = bigCopy(r.CurrentTotalValidatorBalance)
	c.CumulativeProcessedDepositAmount = bigCopy(r.CumulativeProcessedDepositAmount)
	c.WindowWithdrawnRewardAmount = bigCopy(r.WindowWithdrawnRewardAmount)
	c.WindowWithdrawnPrincipalAmount = bigCopy(r.WindowWithdrawnPrincipalAmount)
	return &c
}

// SigningHash computes the hash to be signed by the updater.
func (r *Record) SigningHash() (hash meridian.Bytes32) {
	data, err := rlp.EncodeToBytes(r)
	if err != nil {
		panic(err)
	}
	return meridian.Blake2b(data)
}

func (r *Record) String() string {
	return fmt.Sprintf("record[%d, %d] balance=%v deposits=%v withdrawable=%d pending=%d",
		r.UpdateStartBlock,
		r.UpdateEndBlock,
		r.CurrentTotalValidatorBalance,
		r.CumulativeProcessedDepositAmount,
		r.CumulativeNumValidatorsWithdrawable,
		r.CurrentNumValidatorsNotWithdrawable,
	)
}

func bigCopy(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
