package inmemdb

import (
	"context"
	"database/sql/driver"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
)

type (
	// Record is one stored row, keyed by column name.
	Record map[string]interface{}

	table struct {
		rows   []Record
		serial int64 // next value of the id sequence
	}

	// DB is an in-memory row repository. The zero value is not usable; see Open.
	DB struct {
		mutex  sync.RWMutex
		tables map[string]*table
	}
)

func Open() *DB {
	return &DB{tables: make(map[string]*table)}
}

func (db *DB) table(name string) *table {
	t, ok := db.tables[name]
	if !ok {
		t = &table{serial: 1}
		db.tables[name] = t
	}
	return t
}

func (db *DB) InsertRow(ctx context.Context, tableName string, columns []string, args []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(columns) != len(args) {
		return errors.Errorf("%s: %d columns but %d values", tableName, len(columns), len(args))
	}

	rec := make(Record, len(columns))
	for i, c := range columns {
		v, err := driverValue(args[i])
		if err != nil {
			return errors.Wrapf(err, "%s.%s", tableName, c)
		}
		rec[c] = v
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(tableName)
	if id, ok := rec["id"].(int64); ok {
		for _, r := range t.rows {
			if r["id"] == id {
				return errors.Errorf("%s: duplicate key id=%d", tableName, id)
			}
		}
	}
	t.rows = append(t.rows, rec)
	return nil
}

func (db *DB) SyncSequence(ctx context.Context, tableName, column string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(tableName)
	next := int64(1)
	for _, r := range t.rows {
		if id, ok := r[column].(int64); ok && id >= next {
			next = id + 1
		}
	}
	t.serial = next
	return nil
}

func (db *DB) Truncate(ctx context.Context, tables ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for _, name := range tables {
		delete(db.tables, name)
	}
	return nil
}

func (db *DB) SetUserPassword(ctx context.Context, login string, hash []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	login = core.CleanString(login, true)
	for _, r := range db.table("usuarios").rows {
		if email, ok := r["email"].(string); ok && strings.ToLower(email) == login {
			r["senha"] = string(hash)
			return nil
		}
	}
	return core.ErrNotFound
}

// Rows returns a copy of the rows stored in the table, in insertion order.
func (db *DB) Rows(tableName string) []Record {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, ok := db.tables[tableName]
	if !ok {
		return nil
	}
	rows := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		rows = append(rows, cp)
	}
	return rows
}

// NextID returns the value the table's id sequence would hand out next.
func (db *DB) NextID(tableName string) int64 {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if t, ok := db.tables[tableName]; ok {
		return t.serial
	}
	return 1
}

func driverValue(arg interface{}) (driver.Value, error) {
	if v, ok := arg.(driver.Valuer); ok {
		return v.Value()
	}
	return arg, nil
}
