package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/kiwisport/clubboard/apps/api/echo"
	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/attendance"
	"github.com/kiwisport/clubboard/core/member"
	"github.com/kiwisport/clubboard/core/operator"
	"github.com/kiwisport/clubboard/core/overview"
	"github.com/kiwisport/clubboard/core/payment"
	"github.com/kiwisport/clubboard/services/club"
	emailsvc "github.com/kiwisport/clubboard/services/email"
	logsvc "github.com/kiwisport/clubboard/services/logger"
	"github.com/kiwisport/clubboard/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("getting working directory: %v", err)
	}
	conf, err := core.NewConfig(workDir)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	// set up loggers
	var logger core.Logger
	stdLog := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug {
		logger = logsvc.NewStdLogger(stdLog)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(stdLog, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	opSvc := operator.NewService(database.NewOperatorRepository(db), mailSvc, conf)

	// set up the upstream club API gateway and the view-state stores
	clubClient := club.NewClient(conf)
	roster := member.NewRoster(clubClient)
	board := attendance.NewBoard(clubClient, clubClient)
	ledger := payment.NewLedger(clubClient, clubClient)
	ovSvc := overview.NewService(clubClient, clubClient)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.ServerAddress(),
		&echoapi.Deps{
			Conf:        conf,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			OperatorSvc: opSvc,
			MailSvc:     mailSvc,
			Roster:      roster,
			Board:       board,
			Ledger:      ledger,
			Overview:    ovSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
