package main

import (
	"fmt"

	"github.com/elearn360/backend/storage/database"
)

// mockable
var (
	migrateUpFunc   = database.Migrate
	migrateDownFunc = database.Rollback
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	switch args[0] {
	case "up":
		return migrateUpFunc(cli.db)
	case "down":
		return migrateDownFunc(cli.db)
	default:
		return fmt.Errorf("%q: no such command", args[0])
	}
}
