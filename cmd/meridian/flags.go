// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for databases",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	initBlockFlag = cli.Uint64Flag{
		Name:  "init-block",
		Value: 0,
		Usage: "consensus-layer block number at which the staking system was initialized (used on first start only)",
	}
	updaterFlag = cli.StringSliceFlag{
		Name:  "updater",
		Usage: "address granted the oracle updater role (can be used multiple times)",
	}
	resolverFlag = cli.StringSliceFlag{
		Name:  "resolver",
		Usage: "address granted the pending-update resolver role (can be used multiple times)",
	}
	adminFlag = cli.StringSliceFlag{
		Name:  "admin",
		Usage: "address granted the governance admin role (can be used multiple times)",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	auditLimitFlag = cli.Uint64Flag{
		Name:  "audit-limit",
		Value: 1000,
		Usage: "limit the number of audit events returned per page",
	}
)
