package main

import (
	"github.com/pressly/goose/v3"

	"github.com/trezcool/escola/storage/database"
)

var (
	gooseRunFunc = goose.Run                 // mockable
	createDBFunc = database.CreateIfNotExist // mockable
)

func (cli *commandLine) createDB() error {
	if err := createDBFunc(cli.conf); err != nil {
		return err
	}
	_, _ = cli.out.Write([]byte("database " + cli.conf.Database.Name + " is ready\n"))
	return nil
}

// migrate runs a goose command. create and fix edit the migration sources under the
// work directory; every other command runs the embedded migrations against the database.
func (cli *commandLine) migrate(args []string) error {
	dir := database.MigrationsDir
	onDisk := args[0] == "create" || args[0] == "fix"
	if onDisk {
		dir = database.SourceDir(cli.conf.WorkDir)
	} else if err := cli.connect(); err != nil {
		return err
	}
	if err := database.SetupMigrations(cli.conf.Database.Engine, onDisk); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.sqlDB(), dir, args[1:]...)
}
