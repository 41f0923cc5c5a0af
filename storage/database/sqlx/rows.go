package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/importer"
)

// dbExecutor is the part of *sqlx.DB the repository uses.
type dbExecutor interface {
	Rebind(query string) string
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type RowRepository struct {
	db dbExecutor
}

var _ importer.Repository = (*RowRepository)(nil) // interface compliance check

func NewRowRepository(db *sqlx.DB) *RowRepository {
	return &RowRepository{db: db}
}

func quoteAll(idents []string) []string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = pq.QuoteIdentifier(id)
	}
	return quoted
}

func insertQuery(table string, columns []string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", pq.QuoteIdentifier(table))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table),
		strings.Join(quoteAll(columns), ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)
}

func (repo *RowRepository) InsertRow(ctx context.Context, table string, columns []string, args []interface{}) error {
	if len(columns) != len(args) {
		return errors.Errorf("%s: %d columns but %d values", table, len(columns), len(args))
	}
	q := repo.db.Rebind(insertQuery(table, columns))
	if _, err := repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrapf(err, "inserting into %s", table)
	}
	return nil
}

func syncSequenceQuery(table, column string) string {
	// setval(..., max, false) on an empty table restarts the sequence at 1
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), COALESCE(MAX(%[3]s) + 1, 1), false) FROM %[4]s",
		strings.ReplaceAll(pq.QuoteIdentifier(table), "'", "''"),
		strings.ReplaceAll(column, "'", "''"),
		pq.QuoteIdentifier(column),
		pq.QuoteIdentifier(table),
	)
}

// SyncSequence is a no-op for columns without a serial sequence; setval then yields NULL.
func (repo *RowRepository) SyncSequence(ctx context.Context, table, column string) error {
	var next sql.NullInt64
	if err := repo.db.GetContext(ctx, &next, syncSequenceQuery(table, column)); err != nil {
		return errors.Wrapf(err, "syncing %s.%s sequence", table, column)
	}
	return nil
}

func (repo *RowRepository) Truncate(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	q := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoteAll(tables), ", "))
	if _, err := repo.db.ExecContext(ctx, q); err != nil {
		return errors.Wrap(err, "truncating tables")
	}
	return nil
}

// SetUserPassword stores hash as the password of the user whose email is login.
func (repo *RowRepository) SetUserPassword(ctx context.Context, login string, hash []byte) error {
	q := repo.db.Rebind("UPDATE usuarios SET senha = ? WHERE lower(email) = ?")
	res, err := repo.db.ExecContext(ctx, q, string(hash), core.CleanString(login, true))
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
