package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/apps/api/di/dig"
	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

func startManual(conf *core.Config) {
	// =========================================================================
	// Set up Dependencies

	logger := dig_container.NewLogger(conf)
	dbLogger := dig_container.NewDBLogger(conf)

	storage, err := dig_container.NewStorage(conf, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	mailSvc := dig_container.NewEmailService(conf, logger)
	usrSvc := user.NewService(storage.UserRepo)
	clsSvc := dig_container.NewClassroomService(storage.ClassroomRepo, usrSvc, mailSvc, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	initApp(conf, logger, validate, translator)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			ClassroomSvc: clsSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	serve(conf, logger, storage.DB, dbLogger, server)
}
