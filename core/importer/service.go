package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/school"
	"github.com/trezcool/escola/core/sqldump"
)

// MaxRowErrors is the number of row errors kept per table in a Report.
const MaxRowErrors = 20

var NowFunc = time.Now // mockable

type (
	// Repository persists imported rows. args are positional, matching columns.
	Repository interface {
		InsertRow(ctx context.Context, table string, columns []string, args []interface{}) error
		// SyncSequence moves the serial sequence of table.column past its largest value.
		SyncSequence(ctx context.Context, table, column string) error
		Truncate(ctx context.Context, tables ...string) error
	}

	Options struct {
		// Truncate empties every schema table before importing.
		Truncate bool
	}

	Service struct {
		repo   Repository
		schema school.Schema
		logger core.Logger
	}
)

func NewService(repo Repository, schema school.Schema, logger core.Logger) *Service {
	return &Service{repo: repo, schema: schema, logger: logger}
}

// Import loads every row of the dump that belongs to a schema table.
//
// Tables are filled in schema order. A row that cannot be coerced or inserted is
// counted as failed and the import goes on; only repository-wide failures
// (truncate, sequence sync) and context cancellation abort it.
func (svc *Service) Import(ctx context.Context, dump string, opts Options) (Report, error) {
	rep := Report{
		RunID:     uuid.New().String(),
		StartedAt: NowFunc().UTC(),
	}
	logCtx := map[string]interface{}{"run_id": rep.RunID}
	svc.logger.Info(fmt.Sprintf("import %s: started", rep.RunID), logCtx)

	known := svc.schema.TableSet()
	stmts := sqldump.Locate(dump)
	rows := sqldump.Aggregate(stmts, known)

	empty := make(map[string]int)
	for _, stmt := range stmts {
		if known.Has(stmt.Table) && len(sqldump.SplitTuples(stmt.Values)) == 0 {
			empty[stmt.Table]++
		}
	}
	for _, table := range svc.schema.Tables {
		if n := empty[table.Name]; n > 0 {
			svc.logger.Warn(fmt.Sprintf("import %s: %d %s statement(s) without complete rows (unterminated literal?)", rep.RunID, n, table.Name), logCtx)
		}
	}

	rep.Unknown = sqldump.Unknown(stmts, known)
	if len(rep.Unknown) > 0 {
		svc.logger.Warn(fmt.Sprintf("import %s: skipping unknown tables %v", rep.RunID, rep.Unknown), logCtx)
	}

	if opts.Truncate {
		tables := make([]string, 0, len(svc.schema.Tables))
		for i := len(svc.schema.Tables) - 1; i >= 0; i-- {
			tables = append(tables, svc.schema.Tables[i].Name)
		}
		if err := svc.repo.Truncate(ctx, tables...); err != nil {
			return rep, errors.Wrap(err, "truncating tables")
		}
	}

	for _, table := range svc.schema.Tables {
		tRep, err := svc.importTable(ctx, table, rows[table.Name])
		tRep.EmptyStatements = empty[table.Name]
		rep.Tables = append(rep.Tables, tRep)
		if err != nil {
			rep.FinishedAt = NowFunc().UTC()
			return rep, err
		}
	}

	rep.FinishedAt = NowFunc().UTC()
	total := rep.Totals()
	svc.logger.Info(
		fmt.Sprintf("import %s: finished: %d inserted, %d failed", rep.RunID, total.Inserted, total.Failed),
		logCtx,
	)
	return rep, nil
}

func (svc *Service) importTable(ctx context.Context, table school.Table, rows []sqldump.Row) (TableReport, error) {
	tRep := TableReport{Name: table.Name, Parsed: len(rows)}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return tRep, errors.Wrapf(err, "importing %s", table.Name)
		}

		columns, args, err := table.Bind(row)
		if err == nil {
			err = svc.repo.InsertRow(ctx, table.Name, columns, args)
		}
		if err != nil {
			tRep.fail(i, err)
			svc.logger.Error(fmt.Sprintf("import %s: row %d: %v", table.Name, i+1, err), err)
			continue
		}
		tRep.Inserted++
	}

	if serial, ok := table.SerialColumn(); ok && tRep.Inserted > 0 {
		if err := svc.repo.SyncSequence(ctx, table.Name, serial); err != nil {
			return tRep, errors.Wrapf(err, "syncing %s sequence", table.Name)
		}
	}
	return tRep, nil
}
