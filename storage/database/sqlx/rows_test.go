package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
)

// fakeDB records queries and answers every GetContext with a single NULL column,
// which is what setval returns for a column without a serial sequence.
type fakeDB struct {
	queries  []string
	args     [][]interface{}
	affected int64
}

type fakeResult int64

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

func (db *fakeDB) Rebind(query string) string { return sqlx.Rebind(sqlx.DOLLAR, query) }

func (db *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	db.queries = append(db.queries, query)
	db.args = append(db.args, args)
	return fakeResult(db.affected), nil
}

func (db *fakeDB) GetContext(_ context.Context, dest interface{}, query string, args ...interface{}) error {
	db.queries = append(db.queries, query)
	scanner, ok := dest.(sql.Scanner)
	if !ok {
		return fmt.Errorf("sql: Scan error on column index 0: converting NULL to %T is unsupported", dest)
	}
	return scanner.Scan(nil)
}

func TestInsertQuery(t *testing.T) {
	q := insertQuery("usuarios", []string{"id", "nome", "ativo"})
	assert.Equal(t, `INSERT INTO "usuarios" ("id", "nome", "ativo") VALUES (?, ?, ?)`, q)
	assert.Equal(
		t,
		`INSERT INTO "usuarios" ("id", "nome", "ativo") VALUES ($1, $2, $3)`,
		sqlx.Rebind(sqlx.DOLLAR, q),
	)
	assert.Equal(t, `INSERT INTO "usuarios" DEFAULT VALUES`, insertQuery("usuarios", nil))
}

func TestSyncSequenceQuery(t *testing.T) {
	assert.Equal(
		t,
		`SELECT setval(pg_get_serial_sequence('"cursos"', 'id'), COALESCE(MAX("id") + 1, 1), false) FROM "cursos"`,
		syncSequenceQuery("cursos", "id"),
	)
}

func TestRowRepository_InsertRow(t *testing.T) {
	db := new(fakeDB)
	repo := &RowRepository{db: db}

	require.NoError(t, repo.InsertRow(context.Background(), "usuarios", []string{"id", "nome"}, []interface{}{int64(1), "Ana"}))
	assert.Equal(t, []string{`INSERT INTO "usuarios" ("id", "nome") VALUES ($1, $2)`}, db.queries)
	assert.Equal(t, [][]interface{}{{int64(1), "Ana"}}, db.args)

	assert.Error(t, repo.InsertRow(context.Background(), "usuarios", []string{"id"}, nil))
}

func TestRowRepository_SyncSequence_NoSequence(t *testing.T) {
	db := new(fakeDB)
	repo := &RowRepository{db: db}

	require.NoError(t, repo.SyncSequence(context.Background(), "alunos", "id"))
	assert.Len(t, db.queries, 1)
}

func TestRowRepository_Truncate(t *testing.T) {
	db := new(fakeDB)
	repo := &RowRepository{db: db}

	require.NoError(t, repo.Truncate(context.Background()))
	assert.Empty(t, db.queries)

	require.NoError(t, repo.Truncate(context.Background(), "aulas", "cursos"))
	assert.Equal(t, []string{`TRUNCATE TABLE "aulas", "cursos" RESTART IDENTITY CASCADE`}, db.queries)
}

func TestRowRepository_SetUserPassword(t *testing.T) {
	db := &fakeDB{affected: 1}
	repo := &RowRepository{db: db}

	require.NoError(t, repo.SetUserPassword(context.Background(), " Ana@Escola.test ", []byte("hash")))
	assert.Equal(t, []string{"UPDATE usuarios SET senha = $1 WHERE lower(email) = $2"}, db.queries)
	assert.Equal(t, [][]interface{}{{"hash", "ana@escola.test"}}, db.args)

	db.affected = 0
	assert.Equal(t, core.ErrNotFound, repo.SetUserPassword(context.Background(), "rui@escola.test", []byte("hash")))
}
