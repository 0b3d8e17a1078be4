package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/sharath2004/edubridge/apps/api/echo"
	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/course"
	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
	aisvc "github.com/sharath2004/edubridge/services/ai"
	emailsvc "github.com/sharath2004/edubridge/services/email"
	logsvc "github.com/sharath2004/edubridge/services/logger"
	"github.com/sharath2004/edubridge/storage/database"
	sqlxrepos "github.com/sharath2004/edubridge/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	schRepo := sqlxrepos.NewSchoolRepository(db)
	clsRepo := sqlxrepos.NewClassRepository(db)
	acaRepo := sqlxrepos.NewAcademicRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	schSvc := school.NewService(schRepo, usrRepo, mailSvc)
	usrSvc := user.NewService(usrRepo, mailSvc, schSvc)
	clsSvc := class.NewService(clsRepo, usrRepo)
	acaSvc := academic.NewService(acaRepo)
	crsSvc := course.NewService(crsRepo)

	var assistant ai.Assistant
	if assistant, err = aisvc.NewAnthropicAssistant(conf); err != nil {
		logger.Warn(fmt.Sprintf("assistant unavailable, falling back: %v", err))
		assistant = aisvc.NewDummyAssistant(false)
	}
	aiSvc := ai.NewService(assistant, logger)

	gate := auth.NewGate(usrRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:    conf.Server.Address(),
			Logger:     logger,
			Validate:   validate,
			Translator: translator,

			Gate:         gate,
			UserSvc:      usrSvc,
			SchoolSvc:    schSvc,
			ClassSvc:     clsSvc,
			AcademicSvc:  acaSvc,
			CourseSvc:    crsSvc,
			AssistantSvc: aiSvc,
		},
		shutdown,
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API server listening on %s", conf.Server.Address()))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
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
