package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

func main() {
	di := flag.String("di", "dig", "how dependencies are wired: dig | manual")
	flag.Parse()

	conf := core.NewConfig()
	switch *di {
	case "dig":
		startWithDig(conf)
	case "manual":
		startManual(conf)
	default:
		log.Fatalf("unknown -di %q", *di)
	}
}

// initApp sets up the validators & email templates shared by every request.
func initApp(conf *core.Config, logger core.Logger, validate *validator.Validate, translator ut.Translator) {
	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err := core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
}

// serve runs the debug & API servers until a shutdown signal or a server error.
func serve(conf *core.Config, logger core.Logger, db io.Closer, dbLogger core.Logger, server *echoapi.Server) {
	defer func() {
		if err := db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	if c, ok := logger.(interface{ Close() }); ok {
		defer c.Close() // flush pending rollbar items
	}
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
