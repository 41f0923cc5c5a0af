package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/school"
	"github.com/trezcool/escola/services/email"
	"github.com/trezcool/escola/services/logger"
	"github.com/trezcool/escola/storage/database"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	if err := conf.Validate(validate, translator); err != nil {
		std.Fatalf("invalid configuration: %v", err)
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	var mailer core.EmailService
	if conf.Debug {
		mailer = emailsvc.NewConsoleService(conf, os.Stdout)
	} else {
		mailer = emailsvc.NewSendgridService(conf, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cli := &commandLine{
		conf:       conf,
		logger:     logger,
		mailer:     mailer,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
		openDB:     func() (*sqlx.DB, error) { return database.Open(conf) },
	}
	err := cli.run(ctx, os.Args)
	cli.close()
	stop()
	logger.Close()

	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}
