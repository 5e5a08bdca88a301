// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/meridianstake/meridian/api/admin"
	"github.com/meridianstake/meridian/api/audit"
	"github.com/meridianstake/meridian/api/records"
	"github.com/meridianstake/meridian/api/rewards"
	"github.com/meridianstake/meridian/api/settings"
	"github.com/meridianstake/meridian/api/stake"
	"github.com/meridianstake/meridian/api/subscriptions"
	"github.com/meridianstake/meridian/auditdb"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/pauser"
	"github.com/meridianstake/meridian/returns"
	"github.com/meridianstake/meridian/staking"
)

// Options for assembling the api.
type Options struct {
	AllowedOrigins string
	AuditPageLimit uint64
	PprofOn        bool
	EnableMetrics  bool
}

// New returns the api handler and a close function.
func New(
	o *oracle.Oracle,
	ledger *staking.Ledger,
	accumulator *returns.Accumulator,
	pc *pauser.Pauser,
	auth *authority.Authority,
	auditDB *auditdb.AuditDB,
	logLevel *slog.LevelVar,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	records.New(o).
		Mount(router, "/records")
	settings.New(o).
		Mount(router, "/settings")
	stake.New(ledger, auth).
		Mount(router, "/stake")
	rewards.New(accumulator).
		Mount(router, "/rewards")
	audit.New(auditDB, opts.AuditPageLimit).
		Mount(router, "/audit")
	admin.New(logLevel, pc, auth, auditDB).
		Mount(router, "/admin")
	subs := subscriptions.New(o, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, subs.Close
}
