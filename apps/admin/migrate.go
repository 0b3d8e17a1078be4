package main

import (
	"github.com/trezcool/goose"

	appfs "github.com/sharath2004/edubridge/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	command, arguments := args[0], args[1:]
	return gooseRunFunc(command, cli.db, appfs.FS, "migrations", arguments...)
}
