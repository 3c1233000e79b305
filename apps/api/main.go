package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/educlara/educlara/apps/api/echo"
	"github.com/educlara/educlara/core"
	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/services/logger"
	"github.com/educlara/educlara/storage/database"
	"github.com/educlara/educlara/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig()
	if err != nil {
		std.Fatal(err)
	}

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, db.Ping())

	// set up the board
	repo := sqlxrepos.NewLeaderboardRepository(db)
	agg := leaderboard.NewAggregator(repo.Feeds(), logger)
	board := leaderboard.NewCache(agg, logger, conf.Leaderboard.RefreshInterval)

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go board.Start(refreshCtx)

	// start API server
	validate, translator := core.NewValidator()
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:    conf.Server.Address,
			Logger:     logger,
			Board:      board,
			Validate:   validate,
			Translator: translator,
		},
		shutdown,
	)
	go app.Start()

	<-shutdown
	logger.Info("shutting down...")
	stopRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error())
	}
}
