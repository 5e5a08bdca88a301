// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridianstake/meridian/auditdb"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/co"
	"github.com/meridianstake/meridian/log"
	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/metrics"
)

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".meridian")
	}
	return ""
}

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	logLevel := ctx.Int(verbosityFlag.Name)
	level, err := verbosityToLevel(logLevel)
	if err != nil {
		return nil, err
	}

	logLevelVar := new(slog.LevelVar)
	logLevelVar.Set(level)

	output := os.Stdout
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, logLevelVar)
	} else {
		useColor := isatty.IsTerminal(output.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(output, logLevelVar, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	return logLevelVar, nil
}

func verbosityToLevel(verbosity int) (slog.Level, error) {
	switch verbosity {
	case 0:
		return log.LevelCrit, nil
	case 1:
		return log.LevelError, nil
	case 2:
		return log.LevelWarn, nil
	case 3:
		return log.LevelInfo, nil
	case 4:
		return log.LevelDebug, nil
	case 5:
		return log.LevelTrace, nil
	default:
		return log.LevelInfo, fmt.Errorf("invalid verbosity: %d", verbosity)
	}
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(dataDir string) (*lvldb.LevelDB, error) {
	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openAuditDB(dataDir string) (*auditdb.AuditDB, error) {
	path := filepath.Join(dataDir, "audit.db")
	db, err := auditdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open audit database [%v]", path)
	}
	return db, nil
}

func grantRoles(ctx *cli.Context, auth *authority.Authority) error {
	grant := func(flagName string, role authority.Role) error {
		for _, str := range ctx.StringSlice(flagName) {
			addr, err := meridian.ParseAddress(strings.TrimSpace(str))
			if err != nil {
				return errors.Wrapf(err, "invalid -%s address [%v]", flagName, str)
			}
			if err := auth.Grant(role, *addr); err != nil {
				return err
			}
			logger.Info("granted role", "role", role, "addr", addr)
		}
		return nil
	}
	if err := grant(updaterFlag.Name, authority.RoleUpdater); err != nil {
		return err
	}
	if err := grant(resolverFlag.Name, authority.RoleResolver); err != nil {
		return err
	}
	return grant(adminFlag.Name, authority.RoleAdmin)
}

func startAPIServer(ctx *cli.Context, handler http.HandlerFunc) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second * 2, ReadTimeout: time.Second * 5}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}
	srv := &http.Server{Handler: metrics.HTTPHandler(), ReadHeaderTimeout: time.Second * 2, ReadTimeout: time.Second * 5}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
