package school

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escola/core/sqldump"
)

var (
	// errors
	ErrTooManyValues = errors.New("tuple has more values than the table has columns")

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999Z07",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02",
	}
)

// CoercionError reports a dump value that does not fit its destination column.
type CoercionError struct {
	Column string
	Type   ColumnType
	Value  string
	Err    error
}

func (err *CoercionError) Error() string {
	return fmt.Sprintf("column %s (%s): cannot use %q: %v", err.Column, err.Type, err.Value, err.Err)
}

func (err *CoercionError) Cause() error { return err.Err }

// Bind maps a decoded row onto t's leading columns by position and coerces every value.
// Columns past the end of the row are left out so the database applies their defaults.
func (t Table) Bind(row sqldump.Row) (columns []string, args []interface{}, err error) {
	if len(row) > len(t.Columns) {
		return nil, nil, errors.Wrapf(ErrTooManyValues, "%s: %d values for %d columns", t.Name, len(row), len(t.Columns))
	}
	columns = make([]string, len(row))
	args = make([]interface{}, len(row))
	for i, v := range row {
		c := t.Columns[i]
		arg, err := Coerce(v, c.Type)
		if err != nil {
			return nil, nil, &CoercionError{Column: c.Name, Type: c.Type, Value: v.String(), Err: err}
		}
		columns[i] = c.Name
		args[i] = arg
	}
	return columns, args, nil
}

// Coerce converts a dump value into a nullable SQL value of type typ.
// Empty values are NULL for every type but text.
func Coerce(v sqldump.Value, typ ColumnType) (driver.Valuer, error) {
	if v.IsNull() {
		return nullOf(typ)
	}
	if typ == TypeText {
		return null.StringFrom(v.String()), nil
	}

	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return nullOf(typ)
	}

	switch typ {
	case TypeInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("not an integer")
		}
		return null.Int64From(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("not a number")
		}
		return null.Float64From(f), nil
	case TypeBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		return null.BoolFrom(b), nil
	case TypeDate, TypeTimestamp:
		if strings.HasPrefix(raw, "0000-00-00") { // MySQL zero date
			return null.Time{}, nil
		}
		tm, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		if typ == TypeDate {
			tm = time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC)
		}
		return null.TimeFrom(tm), nil
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}

func nullOf(typ ColumnType) (driver.Valuer, error) {
	switch typ {
	case TypeInt:
		return null.Int64{}, nil
	case TypeFloat:
		return null.Float64{}, nil
	case TypeBool:
		return null.Bool{}, nil
	case TypeText:
		return null.String{}, nil
	case TypeDate, TypeTimestamp:
		return null.Time{}, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "t", "true", "y", "yes", "s", "sim":
		return true, nil
	case "0", "f", "false", "n", "no", "nao", "não":
		return false, nil
	}
	return false, errors.New("not a boolean")
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if tm, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return tm.UTC(), nil
		}
	}
	return time.Time{}, errors.New("not a date")
}
