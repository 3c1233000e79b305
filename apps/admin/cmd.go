package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/educlara/educlara/core"
	"github.com/educlara/educlara/core/leaderboard"
	"github.com/educlara/educlara/services/email"
	"github.com/educlara/educlara/storage/database"
	"github.com/educlara/educlara/storage/database/sqlx"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	logger core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                                   - create the database if needed and apply migrations")
	fmt.Println("  seeddemo -users N                         - populate demo leaderboard data")
	fmt.Println("  senddigest -scope week|all -top N -to a,b - email a leaderboard digest")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seeddemo", flag.ExitOnError)
	seedUsers := seedCmd.Int("users", 25, "number of demo users to create")

	digestCmd := flag.NewFlagSet("senddigest", flag.ExitOnError)
	digestScope := digestCmd.String("scope", "week", "time scope: week or all")
	digestTop := digestCmd.Int("top", 0, "number of entries to include (0 = config default)")
	digestTo := digestCmd.String("to", "", "comma-separated recipient addresses")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "seeddemo":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seedDemo(*seedUsers)
	case "senddigest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return err
		}
		scope := leaderboard.TimeScope(*digestScope)
		if !scope.Valid() || *digestTo == "" {
			digestCmd.Usage()
			return errHelp
		}
		return cli.sendDigest(scope, *digestTop, *digestTo)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openDB() (*sqlx.DB, error) {
	db, err := database.Open(cli.conf)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (cli *commandLine) migrate() error {
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	cli.logger.Info("migrations applied")
	return nil
}

func (cli *commandLine) sendDigest(scope leaderboard.TimeScope, top int, to string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if top <= 0 {
		top = cli.conf.Leaderboard.DigestSize
	}
	recipients := make([]mail.Address, 0)
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, mail.Address{Address: addr})
		}
	}

	repo := sqlxrepos.NewLeaderboardRepository(db)
	agg := leaderboard.NewAggregator(repo.Feeds(), cli.logger)
	snap := agg.BuildSnapshot(context.Background(), scope, "")

	msg, ok, err := leaderboard.BuildDigest(snap, top, recipients)
	if err != nil {
		return err
	}
	if !ok {
		cli.logger.Info("board is empty, no digest sent")
		return nil
	}

	var mailSvc core.EmailService
	if cli.conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(cli.logger)
	}
	mailSvc.SendMessages(msg)
	time.Sleep(2 * time.Second) // let async delivery finish
	cli.logger.Info(fmt.Sprintf("digest sent to %d recipient(s)", len(recipients)))
	return nil
}
