package main

import (
	"log"
	"os"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/school"
	emailsvc "github.com/sharath2004/edubridge/services/email"
	"github.com/sharath2004/edubridge/storage/database"
	sqlxrepos "github.com/sharath2004/edubridge/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	usrRepo := sqlxrepos.NewUserRepository(db)
	schRepo := sqlxrepos.NewSchoolRepository(db)

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: usrRepo,
		schRepo: schRepo,
		schSvc:  school.NewService(schRepo, usrRepo, emailsvc.NewConsoleService()),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
