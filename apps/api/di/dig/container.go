package dig_container

import (
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/inmem"
	"github.com/trezcool/darasa/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage holds the repositories of the configured database engine.
	Storage struct {
		dig.Out
		UserRepo      user.Repository
		ClassroomRepo classroom.Repository
		DB            io.Closer `name:"db"`
	}

	DBParam struct {
		dig.In
		DB io.Closer `name:"db"`
	}

	serverParams struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      *user.Service
		ClassroomSvc *classroom.Service
		Validate     *validator.Validate
		Translator   ut.Translator
	}
)

func NewLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func NewDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// NewStorage opens the configured database (creating & migrating postgres if needed).
func NewStorage(conf *core.Config, dbLogger core.Logger) (Storage, error) {
	if conf.Database.IsInMemory() {
		dbLogger.Warn("using the in-memory database: data is lost on shutdown")
		db := inmemdb.Open()
		return Storage{
			UserRepo:      inmemdb.NewUserRepository(db),
			ClassroomRepo: inmemdb.NewClassroomRepository(db),
			DB:            db,
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		dbLogger.Error(fmt.Sprintf("creating database: %v", err), err)
		return Storage{}, err
	}
	db, err := database.Open(conf)
	if err != nil {
		dbLogger.Error(fmt.Sprintf("opening database: %v", err), err)
		return Storage{}, err
	}
	if err = database.Migrate(db); err != nil {
		dbLogger.Error(fmt.Sprintf("migrating database: %v", err), err)
		_ = db.Close()
		return Storage{}, err
	}
	return Storage{
		UserRepo:      sqlxrepos.NewUserRepository(db),
		ClassroomRepo: sqlxrepos.NewClassroomRepository(db),
		DB:            db,
	}, nil
}

func newStorage(conf *core.Config, p DBLoggerParam) (Storage, error) {
	return NewStorage(conf, p.Logger)
}

func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func NewClassroomService(
	repo classroom.Repository,
	usrSvc *user.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *classroom.Service {
	return classroom.NewService(repo, usrSvc, mailSvc, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		UserSvc:      p.UserSvc,
		ClassroomSvc: p.ClassroomSvc,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New(conf *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(func() *core.Config { return conf }))
	must(c.Provide(NewLogger))
	must(c.Provide(NewDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(NewEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(NewClassroomService))
	must(c.Provide(newServer))

	if conf.Debug {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
