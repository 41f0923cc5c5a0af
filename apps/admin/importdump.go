package main

import (
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/importer"
	"github.com/trezcool/escola/core/school"
	"github.com/trezcool/escola/storage/database/inmem"
)

type importArgs struct {
	file     string
	schema   string
	truncate bool
	dryRun   bool
	migrate  bool
	reportTo string
}

func (cli *commandLine) loadSchema(path string) (school.Schema, error) {
	if path == "" {
		path = cli.conf.Import.SchemaFile
	}
	if path == "" {
		return school.DefaultSchema(), nil
	}

	schema, err := school.LoadSchema(path, cli.logger)
	if err != nil {
		return school.Schema{}, err
	}
	if err = schema.Validate(cli.validate, cli.translator); err != nil {
		return school.Schema{}, err
	}
	return schema, nil
}

func (cli *commandLine) reportRecipient(addr string) (*mail.Address, error) {
	if addr == "" {
		addr = cli.conf.Import.ReportTo
	}
	if addr == "" {
		return nil, nil
	}
	to, err := mail.ParseAddress(addr)
	if err != nil {
		return nil, core.NewArgumentError(fmt.Sprintf("invalid -report-to address %q", addr))
	}
	return to, nil
}

func (cli *commandLine) importDump(ctx context.Context, args importArgs) error {
	to, err := cli.reportRecipient(args.reportTo)
	if err != nil {
		return err
	}
	schema, err := cli.loadSchema(args.schema)
	if err != nil {
		return errors.Wrap(err, "loading schema")
	}
	dump, err := os.ReadFile(args.file)
	if err != nil {
		return errors.Wrap(err, "reading dump")
	}

	var repo importer.Repository
	if args.dryRun {
		repo = inmemdb.Open()
	} else {
		if args.migrate {
			if err = cli.migrate([]string{"up"}); err != nil {
				return errors.Wrap(err, "migrating database")
			}
		}
		if err = cli.connect(); err != nil {
			return err
		}
		repo = cli.repo
	}

	svc := importer.NewService(repo, schema, cli.logger)
	rep, err := svc.Import(ctx, string(dump), importer.Options{Truncate: args.truncate})
	_, _ = fmt.Fprint(cli.out, rep.String())

	if to != nil {
		msg, mErr := rep.Message(*to)
		if mErr != nil {
			return mErr
		}
		if args.dryRun {
			msg.Subject = "[dry run] " + msg.Subject
		}
		cli.mailer.SendMessages(msg)
	}
	return err
}
