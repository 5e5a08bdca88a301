// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/auditdb"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/log"
	"github.com/meridianstake/meridian/pauser"
)

// Admin exposes the operator surface: runtime log level and the protocol
// pause switch.
type Admin struct {
	logLevel *slog.LevelVar
	pauser   *pauser.Pauser
	auth     *authority.Authority
	audit    *auditdb.AuditDB
}

// New creates the admin endpoint group.
func New(logLevel *slog.LevelVar, pc *pauser.Pauser, auth *authority.Authority, audit *auditdb.AuditDB) *Admin {
	return &Admin{logLevel, pc, auth, audit}
}

// LogLevel is the JSON presentation of the current log level.
type LogLevel struct {
	Level string `json:"level"`
}

// PauseStatus is the JSON presentation of the pause flag.
type PauseStatus struct {
	Paused bool `json:"paused"`
}

func (a *Admin) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &LogLevel{Level: a.logLevel.Level().String()})
}

func (a *Admin) handleSetLogLevel(w http.ResponseWriter, req *http.Request) error {
	var payload LogLevel
	if err := utils.ParseJSON(req.Body, &payload); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	switch payload.Level {
	case "trace":
		a.logLevel.Set(log.LevelTrace)
	case "debug":
		a.logLevel.Set(log.LevelDebug)
	case "info":
		a.logLevel.Set(log.LevelInfo)
	case "warn":
		a.logLevel.Set(log.LevelWarn)
	case "error":
		a.logLevel.Set(log.LevelError)
	default:
		return utils.BadRequest(errors.New("level: invalid"))
	}
	return utils.WriteJSON(w, &LogLevel{Level: a.logLevel.Level().String()})
}

func (a *Admin) handleGetPaused(w http.ResponseWriter, _ *http.Request) error {
	paused, err := a.pauser.IsSubmitPaused()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PauseStatus{Paused: paused})
}

func (a *Admin) handleResume(w http.ResponseWriter, req *http.Request) error {
	var signed utils.SignedRequest
	if err := utils.ParseJSON(req.Body, &signed); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := signed.SignerOf("resumeAll")
	if err != nil {
		return utils.BadRequest(err)
	}
	has, err := a.auth.Has(authority.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !has {
		return utils.Forbidden(errors.Errorf("%v is not %s", caller, authority.RoleAdmin))
	}

	if err := a.pauser.ResumeAll(); err != nil {
		return err
	}
	if a.audit != nil {
		if err := a.audit.Record(auditdb.KindResumed, "resumeAll", map[string]string{
			"caller": caller.String(),
		}); err != nil {
			return err
		}
	}
	return utils.WriteJSON(w, &PauseStatus{Paused: false})
}

// Mount mounts the endpoints to the given router.
func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("admin_get_loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("admin_set_loglevel").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetLogLevel))
	sub.Path("/paused").
		Methods(http.MethodGet).
		Name("admin_get_paused").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetPaused))
	sub.Path("/resume").
		Methods(http.MethodPost).
		Name("admin_resume").
		HandlerFunc(utils.WrapHandlerFunc(a.handleResume))
}
