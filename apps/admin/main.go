package main

import (
	"log"
	"os"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/user"
	emailsvc "github.com/elearn360/backend/services/email"
	"github.com/elearn360/backend/storage/database"
	pgrepos "github.com/elearn360/backend/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	sqlxDB := pgrepos.NewDB(db)
	usrRepo := pgrepos.NewUserRepository(sqlxDB)
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleService(conf), conf)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		catSvc:  catalog.NewService(pgrepos.NewCatalogRepository(sqlxDB), usrSvc),
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
