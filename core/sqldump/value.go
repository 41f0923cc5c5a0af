package sqldump

// Value is one decoded field of a tuple: either a string literal or SQL NULL.
type Value struct {
	str   string
	valid bool
}

// Str returns a non-null Value holding s.
func Str(s string) Value { return Value{str: s, valid: true} }

// Null returns the SQL NULL Value.
func Null() Value { return Value{} }

func (v Value) IsNull() bool { return !v.valid }

// String returns the literal, or "" for NULL.
func (v Value) String() string { return v.str }

// GoString makes NULL distinguishable from "" in test failure output.
func (v Value) GoString() string {
	if !v.valid {
		return "NULL"
	}
	return "'" + v.str + "'"
}

// Row is one decoded tuple. Value i is the i-th comma-delimited field of the source tuple.
type Row []Value

// Strings returns the row as plain strings, NULL becoming "".
func (r Row) Strings() []string {
	out := make([]string, 0, len(r))
	for _, v := range r {
		out = append(out, v.String())
	}
	return out
}
