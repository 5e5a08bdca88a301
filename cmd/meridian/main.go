// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridianstake/meridian/api"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/log"
	"github.com/meridianstake/meridian/metrics"
	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/pauser"
	"github.com/meridianstake/meridian/returns"
	"github.com/meridianstake/meridian/staking"
)

var (
	version   string
	gitCommit string
	release   = "dev"

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := release
	if gitCommit != "" {
		versionMeta += "-" + gitCommit
	}
	return fmt.Sprintf("%s-%s", version, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "meridian",
		Usage:     "staking oracle record keeper",
		Copyright: "2024 The Meridian developers",
		Flags: []cli.Flag{
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			auditLimitFlag,
			initBlockFlag,
			updaterFlag,
			resolverFlag,
			adminFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	auditDB, err := openAuditDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing audit database..."); auditDB.Close() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer closeFunc()
		logger.Info("metrics service started", "url", url)
	}

	ledger, err := staking.NewLedger(
		kv.Bucket("staking.").NewStore(mainDB), ctx.Uint64(initBlockFlag.Name))
	if err != nil {
		return err
	}
	accumulator := returns.NewAccumulator(kv.Bucket("returns.").NewStore(mainDB))
	pauseCtrl := pauser.New(kv.Bucket("pauser.").NewStore(mainDB))
	auth := authority.New(kv.Bucket("authority.").NewStore(mainDB))
	if err := grantRoles(ctx, auth); err != nil {
		return err
	}

	o, err := oracle.New(mainDB, ledger, accumulator, pauseCtrl, auth, auditDB)
	if err != nil {
		return err
	}

	apiHandler, apiCloser := api.New(o, ledger, accumulator, pauseCtrl, auth, auditDB, logLevel, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		AuditPageLimit: ctx.Uint64(auditLimitFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	defer apiCloser()

	apiURL, apiSrvCloser, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API service..."); apiSrvCloser() }()

	logger.Info("starting oracle service",
		"version", fullVersion(),
		"dataDir", dataDir,
		"apiURL", apiURL,
		"records", o.NumRecords())

	exitCtx := handleExitSignal()
	<-exitCtx.Done()
	return nil
}
