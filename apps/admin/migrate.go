package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/darasa/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(command string, args ...string) error {
	return gooseRunFunc(command, cli.db, appfs.FS, "migrations", args...)
}
