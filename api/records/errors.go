// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/oracle"
)

// parseSignedCaller decodes a signed request envelope and recovers the
// caller. payload may be nil when the operation carries none.
func parseSignedCaller(req *http.Request, op string, payload any) (meridian.Address, error) {
	var signed utils.SignedRequest
	if err := utils.ParseJSON(req.Body, &signed); err != nil {
		return meridian.Address{}, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	signer, err := signed.SignerOf(op)
	if err != nil {
		return meridian.Address{}, utils.BadRequest(err)
	}
	if payload != nil && len(signed.Payload) > 0 {
		if err := utils.ParseJSONBytes(signed.Payload, payload); err != nil {
			return meridian.Address{}, utils.BadRequest(errors.WithMessage(err, "payload"))
		}
	}
	return signer, nil
}

// convertOracleError maps oracle errors to the http error tiers: authorization
// failures are forbidden, state conflicts are conflicts, structural failures
// are bad requests.
func convertOracleError(err error) error {
	switch errors.Cause(err) {
	case oracle.ErrUnauthorized:
		return utils.Forbidden(err)
	case oracle.ErrPaused,
		oracle.ErrCannotUpdateWhileUpdatePending,
		oracle.ErrNoUpdatePending:
		return utils.Conflict(err)
	case oracle.ErrRecordDoesNotExist, oracle.ErrEmptyStore:
		return utils.NotFound(err)
	case oracle.ErrUpdateEndBeforeStartBlock,
		oracle.ErrUpdateStartBlock,
		oracle.ErrMoreDepositsProcessedThanSent,
		oracle.ErrMoreValidatorsThanInitiated,
		oracle.ErrInvalidRecordModification,
		oracle.ErrCannotModifyInitialRecord:
		return utils.BadRequest(err)
	default:
		return err
	}
}
