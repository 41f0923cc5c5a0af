package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/importer"
	"github.com/trezcool/escola/storage/database/sqlx"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type repository interface {
	importer.Repository
	SetUserPassword(ctx context.Context, login string, hash []byte) error
}

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	mailer     core.EmailService
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer

	openDB func() (*sqlx.DB, error)
	db     *sqlx.DB
	repo   repository
}

// connect opens the database on first use.
func (cli *commandLine) connect() error {
	if cli.repo != nil {
		return nil
	}
	db, err := cli.openDB()
	if err != nil {
		return pkgerrors.Wrap(err, "connecting to database")
	}
	cli.db = db
	cli.repo = sqlxrepos.NewRowRepository(db)
	return nil
}

func (cli *commandLine) sqlDB() *sql.DB {
	if cli.db == nil {
		return nil
	}
	return cli.db.DB
}

func (cli *commandLine) close() {
	if cli.db != nil {
		_ = cli.db.Close()
		cli.db = nil
	}
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  createdb - create the app database user and database if they do not exist")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	_, _ = fmt.Fprintln(cli.out, "  importdump -file PATH [-schema PATH] [-truncate] [-dry-run] [-migrate] [-report-to EMAIL] - import a SQL INSERT dump")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -username EMAIL - reset user's password")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := cli.newFlagSet("importdump")
	importFile := importCmd.String("file", "", "Path of the SQL dump to import.")
	importSchema := importCmd.String("schema", "", "Path of a YAML schema file. Defaults to import_schemaFile, then the built-in schema.")
	importTruncate := importCmd.Bool("truncate", false, "Empty every schema table before importing.")
	importDryRun := importCmd.Bool("dry-run", false, "Import into memory only and print the report.")
	importMigrate := importCmd.Bool("migrate", false, "Apply pending migrations before importing.")
	importReportTo := importCmd.String("report-to", "", "Email the report to this address. Defaults to import_reportTo.")

	resetPasswordCmd := cli.newFlagSet("resetpassword")
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "createdb":
		return cli.createDB()

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "importdump":
		if err := parseFlags(importCmd, args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importDump(ctx, importArgs{
			file:     *importFile,
			schema:   *importSchema,
			truncate: *importTruncate,
			dryRun:   *importDryRun,
			migrate:  *importMigrate,
			reportTo: *importReportTo,
		})

	case "resetpassword":
		if err := parseFlags(resetPasswordCmd, args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordUname, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}
