// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/record"
	"github.com/meridianstake/meridian/staking"
)

// validateUpdate runs the hard structural checks on a candidate record
// against the record at prevIndex and the externally reported staking caps.
// A failure aborts the submission outright; there is no soft path here.
//
// The predecessor index is explicit so replacement records are validated
// against their original ancestor rather than the chain tail.
func (o *Oracle) validateUpdate(prevIndex uint64, rec *record.Record) error {
	if rec.UpdateEndBlock <= rec.UpdateStartBlock {
		return errors.Wrapf(ErrUpdateEndBeforeStartBlock,
			"start %d, end %d", rec.UpdateStartBlock, rec.UpdateEndBlock)
	}

	prev, err := o.store.At(prevIndex)
	if err != nil {
		return err
	}
	if rec.UpdateStartBlock != prev.UpdateEndBlock+1 {
		return errors.Wrapf(ErrUpdateStartBlock,
			"start %d, previous end %d", rec.UpdateStartBlock, prev.UpdateEndBlock)
	}

	return validateAgainstStaking(rec, o.staking)
}

func validateAgainstStaking(rec *record.Record, reader staking.Reader) error {
	totalDeposited, err := reader.TotalDepositedInValidators()
	if err != nil {
		return err
	}
	if rec.CumulativeProcessedDepositAmount.Cmp(totalDeposited) > 0 {
		return errors.Wrapf(ErrMoreDepositsProcessedThanSent,
			"processed %v, sent %v", rec.CumulativeProcessedDepositAmount, totalDeposited)
	}

	numInitiated, err := reader.NumInitiatedValidators()
	if err != nil {
		return err
	}
	if rec.TotalNumValidators() > numInitiated {
		return errors.Wrapf(ErrMoreValidatorsThanInitiated,
			"reported %d, initiated %d", rec.TotalNumValidators(), numInitiated)
	}
	return nil
}
