// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import "github.com/pkg/errors"

// Hard errors abort the whole submission with no state change. Soft sanity
// rejections are not errors; see Rejection.
var (
	// store errors
	ErrEmptyStore                = errors.New("record store is empty")
	ErrRecordDoesNotExist        = errors.New("record does not exist")
	ErrCannotModifyInitialRecord = errors.New("cannot modify initial record")
	// ErrStoreDiscontinuity guards against appends that would break the
	// gapless chain. Callers validate first, so hitting it is a program error.
	ErrStoreDiscontinuity = errors.New("append would break record contiguity")

	// validation errors
	ErrUpdateEndBeforeStartBlock      = errors.New("update end block not after start block")
	ErrUpdateStartBlock               = errors.New("update start block does not follow previous record")
	ErrMoreDepositsProcessedThanSent  = errors.New("more deposits processed than sent to validators")
	ErrMoreValidatorsThanInitiated    = errors.New("more validators than ever initiated")
	ErrInvalidRecordModification      = errors.New("record modification must preserve the block range")
	ErrCannotUpdateWhileUpdatePending = errors.New("cannot update while an update is pending")
	ErrNoUpdatePending                = errors.New("no update pending")
	ErrPaused                         = errors.New("submissions are paused")
	ErrUnauthorized                   = errors.New("caller lacks required role")
)
