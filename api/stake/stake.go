// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/staking"
)

// Stake exposes the staking ledger: the deposit and validator-count facts the
// oracle validates records against.
type Stake struct {
	ledger *staking.Ledger
	auth   *authority.Authority
}

// New creates the stake endpoint group.
func New(ledger *staking.Ledger, auth *authority.Authority) *Stake {
	return &Stake{ledger, auth}
}

// LedgerView is the JSON presentation of the staking ledger.
type LedgerView struct {
	TotalDepositedInValidators *big.Int `json:"totalDepositedInValidators"`
	NumInitiatedValidators     uint64   `json:"numInitiatedValidators"`
	InitializationBlockNumber  uint64   `json:"initializationBlockNumber"`
}

// InitiatePayload is the signed payload for initiating validators.
type InitiatePayload struct {
	Count         uint64   `json:"count"`
	DepositAmount *big.Int `json:"depositAmount"`
}

// TopUpPayload is the signed payload for topping up running validators.
type TopUpPayload struct {
	Amount *big.Int `json:"amount"`
}

func (s *Stake) handleGetLedger(w http.ResponseWriter, _ *http.Request) error {
	var (
		view LedgerView
		err  error
	)
	if view.TotalDepositedInValidators, err = s.ledger.TotalDepositedInValidators(); err != nil {
		return err
	}
	if view.NumInitiatedValidators, err = s.ledger.NumInitiatedValidators(); err != nil {
		return err
	}
	if view.InitializationBlockNumber, err = s.ledger.InitializationBlockNumber(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &view)
}

func (s *Stake) handleInitiateValidators(w http.ResponseWriter, req *http.Request) error {
	var payload InitiatePayload
	if err := s.parseAdminRequest(req, "initiateValidators", &payload); err != nil {
		return err
	}
	if err := s.ledger.InitiateValidators(payload.Count, payload.DepositAmount); err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, map[string]bool{"initiated": true})
}

func (s *Stake) handleTopUp(w http.ResponseWriter, req *http.Request) error {
	var payload TopUpPayload
	if err := s.parseAdminRequest(req, "topUpValidators", &payload); err != nil {
		return err
	}
	if err := s.ledger.TopUp(payload.Amount); err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, map[string]bool{"toppedUp": true})
}

func (s *Stake) parseAdminRequest(req *http.Request, op string, payload any) error {
	var signed utils.SignedRequest
	if err := utils.ParseJSON(req.Body, &signed); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := signed.SignerOf(op)
	if err != nil {
		return utils.BadRequest(err)
	}
	has, err := s.auth.Has(authority.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !has {
		return utils.Forbidden(errors.Errorf("%v is not %s", caller, authority.RoleAdmin))
	}
	return utils.ParseJSONBytes(signed.Payload, payload)
}

// Mount mounts the endpoints to the given router.
func (s *Stake) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("stake_get_ledger").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetLedger))
	sub.Path("/validators").
		Methods(http.MethodPost).
		Name("stake_initiate_validators").
		HandlerFunc(utils.WrapHandlerFunc(s.handleInitiateValidators))
	sub.Path("/topup").
		Methods(http.MethodPost).
		Name("stake_topup").
		HandlerFunc(utils.WrapHandlerFunc(s.handleTopUp))
}
