// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/record"
)

// Records exposes the oracle record surface: submission, reads and pending
// update resolution.
type Records struct {
	oracle *oracle.Oracle
}

// New creates the records endpoint group.
func New(o *oracle.Oracle) *Records {
	return &Records{o}
}

func (r *Records) handleSubmitRecord(w http.ResponseWriter, req *http.Request) error {
	var submission SubmitRequest
	if err := utils.ParseJSON(req.Body, &submission); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if submission.Record == nil {
		return utils.BadRequest(errors.New("record: missing"))
	}
	sig, err := utils.ParseHexData(submission.Signature)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "signature"))
	}

	rec := submission.Record.ToRecord()
	caller, err := record.Signer(rec, sig)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "signature"))
	}

	rejection, err := r.oracle.ReceiveRecord(caller, rec)
	if err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, &SubmitResult{
		Committed: rejection == nil,
		Rejection: rejection,
	})
}

func (r *Records) handleGetLatest(w http.ResponseWriter, _ *http.Request) error {
	rec, err := r.oracle.LatestRecord()
	if err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, ConvertRecord(rec))
}

func (r *Records) handleGetCount(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &CountResult{Count: r.oracle.NumRecords()})
}

func (r *Records) handleGetPending(w http.ResponseWriter, _ *http.Request) error {
	rec, err := r.oracle.PendingUpdate()
	if err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, ConvertRecord(rec))
}

func (r *Records) handleGetRecord(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	rec, err := r.oracle.RecordAt(index)
	if err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, ConvertRecord(rec))
}

func (r *Records) handleAcceptPending(w http.ResponseWriter, req *http.Request) error {
	caller, err := parseSignedCaller(req, "acceptPendingUpdate", nil)
	if err != nil {
		return err
	}
	if err := r.oracle.AcceptPendingUpdate(caller); err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, map[string]bool{"accepted": true})
}

func (r *Records) handleRejectPending(w http.ResponseWriter, req *http.Request) error {
	caller, err := parseSignedCaller(req, "rejectPendingUpdate", nil)
	if err != nil {
		return err
	}
	if err := r.oracle.RejectPendingUpdate(caller); err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, map[string]bool{"rejected": true})
}

func (r *Records) handleModifyRecord(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}

	var payload ModifyPayload
	caller, err := parseSignedCaller(req, "modifyExistingRecord", &payload)
	if err != nil {
		return err
	}
	if payload.Record == nil {
		return utils.BadRequest(errors.New("record: missing"))
	}
	if payload.Index != index {
		return utils.BadRequest(errors.New("index: mismatch with payload"))
	}

	if err := r.oracle.ModifyExistingRecord(caller, index, payload.Record.ToRecord()); err != nil {
		return convertOracleError(err)
	}
	return utils.WriteJSON(w, map[string]bool{"modified": true})
}

// Mount mounts the endpoints to the given router.
func (r *Records) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodPost).
		Name("records_submit").
		HandlerFunc(utils.WrapHandlerFunc(r.handleSubmitRecord))
	sub.Path("/latest").
		Methods(http.MethodGet).
		Name("records_get_latest").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetLatest))
	sub.Path("/count").
		Methods(http.MethodGet).
		Name("records_get_count").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetCount))
	sub.Path("/pending").
		Methods(http.MethodGet).
		Name("records_get_pending").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetPending))
	sub.Path("/pending/accept").
		Methods(http.MethodPost).
		Name("records_accept_pending").
		HandlerFunc(utils.WrapHandlerFunc(r.handleAcceptPending))
	sub.Path("/pending/reject").
		Methods(http.MethodPost).
		Name("records_reject_pending").
		HandlerFunc(utils.WrapHandlerFunc(r.handleRejectPending))
	sub.Path("/{index}").
		Methods(http.MethodGet).
		Name("records_get_record").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRecord))
	sub.Path("/{index}").
		Methods(http.MethodPut).
		Name("records_modify_record").
		HandlerFunc(utils.WrapHandlerFunc(r.handleModifyRecord))
}
