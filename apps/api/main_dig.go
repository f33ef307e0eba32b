package main

import (
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/apps/api/di/dig"
	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
)

func startWithDig(conf *core.Config) {
	c := dig_container.New(conf)

	must(c.Invoke(func(
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		dbParam dig_container.DBParam,
		validate *validator.Validate,
		translator ut.Translator,
		server *echoapi.Server,
	) {
		initApp(conf, apiLogger, validate, translator)
		serve(conf, apiLogger, dbParam.DB, dbLoggerParam.Logger, server)
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
