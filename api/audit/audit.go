// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package audit

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/auditdb"
)

// Audit exposes the audit event log for operator inspection.
type Audit struct {
	db    *auditdb.AuditDB
	limit uint64
}

// New creates the audit endpoint group. limit caps the page size.
func New(db *auditdb.AuditDB, limit uint64) *Audit {
	return &Audit{db, limit}
}

func (a *Audit) handleQueryEvents(w http.ResponseWriter, req *http.Request) error {
	filter := auditdb.Filter{Limit: a.limit}

	if kind := req.URL.Query().Get("kind"); kind != "" {
		k := auditdb.Kind(kind)
		filter.Kind = &k
	}
	if order := req.URL.Query().Get("order"); order == "desc" {
		filter.Order = auditdb.DESC
	}
	if offset := req.URL.Query().Get("offset"); offset != "" {
		v, err := strconv.ParseUint(offset, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "offset"))
		}
		filter.Offset = v
	}
	if limit := req.URL.Query().Get("limit"); limit != "" {
		v, err := strconv.ParseUint(limit, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "limit"))
		}
		if v > a.limit {
			return utils.BadRequest(errors.Errorf("limit: exceeds maximum of %d", a.limit))
		}
		filter.Limit = v
	}

	events, err := a.db.Query(&filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, events)
}

// Mount mounts the endpoints to the given router.
func (a *Audit) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("audit_query_events").
		HandlerFunc(utils.WrapHandlerFunc(a.handleQueryEvents))
}
