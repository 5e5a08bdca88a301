// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"math/big"

	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/record"
)

// Record is the JSON presentation of an oracle record.
type Record struct {
	UpdateStartBlock                    uint64   `json:"updateStartBlock"`
	UpdateEndBlock                      uint64   `json:"updateEndBlock"`
	CurrentTotalValidatorBalance        *big.Int `json:"currentTotalValidatorBalance"`
	CumulativeNumValidatorsWithdrawable uint64   `json:"cumulativeNumValidatorsWithdrawable"`
	CurrentNumValidatorsNotWithdrawable uint64   `json:"currentNumValidatorsNotWithdrawable"`
	CumulativeProcessedDepositAmount    *big.Int `json:"cumulativeProcessedDepositAmount"`
	WindowWithdrawnRewardAmount         *big.Int `json:"windowWithdrawnRewardAmount"`
	WindowWithdrawnPrincipalAmount      *big.Int `json:"windowWithdrawnPrincipalAmount"`
}

// ConvertRecord converts the domain type to its JSON presentation.
func ConvertRecord(rec *record.Record) *Record {
	return &Record{
		UpdateStartBlock:                    rec.UpdateStartBlock,
		UpdateEndBlock:                      rec.UpdateEndBlock,
		CurrentTotalValidatorBalance:        rec.CurrentTotalValidatorBalance,
		CumulativeNumValidatorsWithdrawable: rec.CumulativeNumValidatorsWithdrawable,
		CurrentNumValidatorsNotWithdrawable: rec.CurrentNumValidatorsNotWithdrawable,
		CumulativeProcessedDepositAmount:    rec.CumulativeProcessedDepositAmount,
		WindowWithdrawnRewardAmount:         rec.WindowWithdrawnRewardAmount,
		WindowWithdrawnPrincipalAmount:      rec.WindowWithdrawnPrincipalAmount,
	}
}

// ToRecord converts to the domain type.
func (r *Record) ToRecord() *record.Record {
	return (&record.Record{
		UpdateStartBlock:                    r.UpdateStartBlock,
		UpdateEndBlock:                      r.UpdateEndBlock,
		CurrentTotalValidatorBalance:        r.CurrentTotalValidatorBalance,
		CumulativeNumValidatorsWithdrawable: r.CumulativeNumValidatorsWithdrawable,
		CurrentNumValidatorsNotWithdrawable: r.CurrentNumValidatorsNotWithdrawable,
		CumulativeProcessedDepositAmount:    r.CumulativeProcessedDepositAmount,
		WindowWithdrawnRewardAmount:         r.WindowWithdrawnRewardAmount,
		WindowWithdrawnPrincipalAmount:      r.WindowWithdrawnPrincipalAmount,
	}).Copy() // normalize nil amounts
}

// SubmitRequest is a record submission, signed by the updater over the
// record's signing hash.
type SubmitRequest struct {
	Record    *Record `json:"record"`
	Signature string  `json:"signature"`
}

// SubmitResult reports the outcome of a submission: committed directly, or
// parked pending with the violated sanity rule.
type SubmitResult struct {
	Committed bool              `json:"committed"`
	Rejection *oracle.Rejection `json:"rejection,omitempty"`
}

// ModifyPayload is the signed payload of a record modification.
type ModifyPayload struct {
	Index  uint64  `json:"index"`
	Record *Record `json:"record"`
}

// CountResult wraps the record count.
type CountResult struct {
	Count uint64 `json:"count"`
}
