package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/iep"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	textgensvc "github.com/trezcool/darasa/services/textgen"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, core.Conf.AppName+" API : ", log.LstdFlags|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	if err := run(logger); err != nil {
		logger.Error("server error", err)
		os.Exit(1)
	}
}

func run(logger core.Logger) error {
	// set up DB
	sqlDB, err := database.Open(core.Conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = sqlDB.Close() }()
	if err = database.Migrate(sqlDB); err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, core.Conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var textGen core.TextGenerator
	if core.Conf.OpenAI.ApiKey == "" {
		textGen = textgensvc.NewDummyService("By June, given grade-level text, the student will answer "+
			"comprehension questions with 80% accuracy in 4 of 5 trials.", nil)
	} else {
		textGen = textgensvc.NewOpenAIService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc)
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db), usrRepo)
	stuSvc := student.NewService(sqlxrepos.NewStudentRepository(db), crsSvc, usrRepo)
	annSvc := announcement.NewService(sqlxrepos.NewAnnouncementRepository(db), crsSvc)
	iepSvc := iep.NewService(sqlxrepos.NewIepRepository(db), textGen)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:         core.Conf.Server.Address(),
			Logger:          logger,
			Shutdown:        func() { shutdown <- syscall.SIGTERM },
			UserSvc:         usrSvc,
			CourseSvc:       crsSvc,
			StudentSvc:      stuSvc,
			AnnouncementSvc: annSvc,
			IepSvc:          iepSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + core.Conf.Server.Address())
		app.Start()
		serverErrors <- errors.New("server stopped")
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		logger.Info("shutdown started: " + sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			return errors.Wrap(err, "stopping server")
		}
		logger.Info("shutdown complete")
	}
	return nil
}
