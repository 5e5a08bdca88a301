// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/oracle"
)

// Settings exposes the governance-configurable oracle bounds.
type Settings struct {
	oracle *oracle.Oracle
}

// New creates the settings endpoint group.
func New(o *oracle.Oracle) *Settings {
	return &Settings{o}
}

// SetPayload is the signed payload of a setting change.
type SetPayload struct {
	Value *big.Int `json:"value"`
}

func (s *Settings) handleGetSettings(w http.ResponseWriter, _ *http.Request) error {
	snapshot, err := s.oracle.Bounds().Snapshot()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, snapshot)
}

func (s *Settings) handleSetSetting(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["name"]

	var signed utils.SignedRequest
	if err := utils.ParseJSON(req.Body, &signed); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := signed.SignerOf(name)
	if err != nil {
		return utils.BadRequest(err)
	}
	var payload SetPayload
	if err := utils.ParseJSONBytes(signed.Payload, &payload); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "payload"))
	}
	if payload.Value == nil {
		return utils.BadRequest(errors.New("value: missing"))
	}

	if err := s.set(caller, name, payload.Value); err != nil {
		switch errors.Cause(err) {
		case oracle.ErrUnauthorized:
			return utils.Forbidden(err)
		default:
			return utils.BadRequest(err)
		}
	}
	return utils.WriteJSON(w, map[string]bool{"updated": true})
}

func (s *Settings) set(caller meridian.Address, name string, value *big.Int) error {
	switch name {
	case oracle.SettingMinReportSizeBlocks,
		oracle.SettingMinGainPerBlockPPT,
		oracle.SettingMaxGainPerBlockPPT,
		oracle.SettingMaxLossPPM:
		if !value.IsUint64() {
			return errors.New("value out of range")
		}
	}

	switch name {
	case oracle.SettingMinReportSizeBlocks:
		return s.oracle.SetMinReportSizeBlocks(caller, value.Uint64())
	case oracle.SettingMinDepositPerValidator:
		return s.oracle.SetMinDepositPerValidator(caller, value)
	case oracle.SettingMaxDepositPerValidator:
		return s.oracle.SetMaxDepositPerValidator(caller, value)
	case oracle.SettingMinGainPerBlockPPT:
		return s.oracle.SetMinGainPerBlockPPT(caller, value.Uint64())
	case oracle.SettingMaxGainPerBlockPPT:
		return s.oracle.SetMaxGainPerBlockPPT(caller, value.Uint64())
	case oracle.SettingMaxLossPPM:
		return s.oracle.SetMaxLossPPM(caller, value.Uint64())
	default:
		return errors.New("unknown setting")
	}
}

// Mount mounts the endpoints to the given router.
func (s *Settings) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("settings_get").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetSettings))
	sub.Path("/{name}").
		Methods(http.MethodPost).
		Name("settings_set").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSetSetting))
}
