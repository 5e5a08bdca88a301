// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/record"
)

// Rejection describes a failed sanity check: the human-readable reason, the
// offending value and the bound it violated. A rejection is not an error in
// the transactional sense; it routes the record into the pending slot.
type Rejection struct {
	Reason string   `json:"reason"`
	Value  *big.Int `json:"value"`
	Bound  *big.Int `json:"bound"`
}

// sanityCheckUpdate runs the soft, ratio-based bound checks of a candidate
// record against its predecessor. It is a pure function of the two records
// and the configured bounds; it returns the first violated rule or nil.
//
// Monotonicity rules run before the band rules, so the band math below can
// assume non-negative window deltas.
func sanityCheckUpdate(prev, rec *record.Record, bounds *Snapshot) *Rejection {
	// (a) minimum report size
	if size := rec.WindowSizeBlocks(); size < bounds.MinReportSizeBlocks {
		return &Rejection{
			Reason: "report window smaller than minimum",
			Value:  new(big.Int).SetUint64(size),
			Bound:  new(big.Int).SetUint64(bounds.MinReportSizeBlocks),
		}
	}

	// (b) cumulative withdrawable validator count is monotonic
	if rec.CumulativeNumValidatorsWithdrawable < prev.CumulativeNumValidatorsWithdrawable {
		return &Rejection{
			Reason: "cumulative number of withdrawable validators decreased",
			Value:  new(big.Int).SetUint64(rec.CumulativeNumValidatorsWithdrawable),
			Bound:  new(big.Int).SetUint64(prev.CumulativeNumValidatorsWithdrawable),
		}
	}

	// (c) total validator count is monotonic
	if rec.TotalNumValidators() < prev.TotalNumValidators() {
		return &Rejection{
			Reason: "total number of validators decreased",
			Value:  new(big.Int).SetUint64(rec.TotalNumValidators()),
			Bound:  new(big.Int).SetUint64(prev.TotalNumValidators()),
		}
	}

	// (d) cumulative processed deposits are monotonic
	if rec.CumulativeProcessedDepositAmount.Cmp(prev.CumulativeProcessedDepositAmount) < 0 {
		return &Rejection{
			Reason: "cumulative processed deposit amount decreased",
			Value:  new(big.Int).Set(rec.CumulativeProcessedDepositAmount),
			Bound:  new(big.Int).Set(prev.CumulativeProcessedDepositAmount),
		}
	}

	newDeposits := new(big.Int).Sub(
		rec.CumulativeProcessedDepositAmount,
		prev.CumulativeProcessedDepositAmount,
	)
	newValidators := new(big.Int).SetUint64(rec.TotalNumValidators() - prev.TotalNumValidators())

	// (e) deposits per newly appeared validator within band. With zero new
	// validators the band collapses to [0, 0], so any nonzero deposit this
	// window is rejected here.
	minDeposits := new(big.Int).Mul(bounds.MinDepositPerValidator, newValidators)
	if newDeposits.Cmp(minDeposits) < 0 {
		return &Rejection{
			Reason: "deposits per new validator below minimum",
			Value:  newDeposits,
			Bound:  minDeposits,
		}
	}
	maxDeposits := new(big.Int).Mul(bounds.MaxDepositPerValidator, newValidators)
	if newDeposits.Cmp(maxDeposits) > 0 {
		return &Rejection{
			Reason: "deposits per new validator above maximum",
			Value:  newDeposits,
			Bound:  maxDeposits,
		}
	}

	// (f) gross consensus layer balance change band. The baseline is the
	// previous balance plus everything newly deposited; the observation adds
	// back window withdrawals so the band is independent of withdrawal
	// timing. Intermediates stay full precision; division happens last.
	baseline := new(big.Int).Add(prev.CurrentTotalValidatorBalance, newDeposits)
	observed := new(big.Int).Add(rec.CurrentTotalValidatorBalance, rec.WindowWithdrawnPrincipalAmount)
	observed.Add(observed, rec.WindowWithdrawnRewardAmount)

	size := new(big.Int).SetUint64(rec.WindowSizeBlocks())
	ppm := new(big.Int).SetUint64(meridian.PPMDenominator)
	ppt := new(big.Int).SetUint64(meridian.PPTDenominator)

	maxLoss := new(big.Int).Mul(baseline, new(big.Int).SetUint64(bounds.MaxLossPPM))
	maxLoss.Div(maxLoss, ppm)

	minGain := new(big.Int).Mul(baseline, new(big.Int).SetUint64(bounds.MinGainPerBlockPPT))
	minGain.Mul(minGain, size)
	minGain.Div(minGain, ppt)

	maxGain := new(big.Int).Mul(baseline, new(big.Int).SetUint64(bounds.MaxGainPerBlockPPT))
	maxGain.Mul(maxGain, size)
	maxGain.Div(maxGain, ppt)

	lower := new(big.Int).Sub(baseline, maxLoss)
	lower.Add(lower, minGain)
	if observed.Cmp(lower) < 0 {
		return &Rejection{
			Reason: "consensus layer balance change below minimum",
			Value:  observed,
			Bound:  lower,
		}
	}

	upper := new(big.Int).Add(baseline, maxGain)
	if observed.Cmp(upper) > 0 {
		return &Rejection{
			Reason: "consensus layer balance change above maximum",
			Value:  observed,
			Bound:  upper,
		}
	}

	return nil
}
