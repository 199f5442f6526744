package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wannadb/docbase-tasks/internal/cli"
	"github.com/wannadb/docbase-tasks/internal/config"
	"github.com/wannadb/docbase-tasks/pkg/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		panic(err)
	}

	logLvl, err := zap.ParseAtomicLevel(cfg.Local.LogLevel)
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger := log.InitLog(logLvl, cfg.Local.LogFormat)
	defer func() { _ = logger.Sync() }()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	command := cli.NewDocbaseCommand()
	if err := command.ExecuteContext(ctx); err != nil {
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}
}
