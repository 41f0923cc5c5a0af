package sqldump

import (
	"sort"
	"strings"
)

// TableSet is the allowlist of tables the aggregator keeps rows for.
type TableSet map[string]struct{}

func NewTableSet(names ...string) TableSet {
	set := make(TableSet, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}

func (set TableSet) Has(name string) bool {
	_, ok := set[name]
	return ok
}

// Result maps a table name to its rows, in dump order.
type Result map[string][]Row

// Aggregate decodes the statements of known tables and accumulates their rows per table.
// Statements for tables outside known are dropped.
func Aggregate(stmts []Statement, known TableSet) Result {
	res := make(Result)
	for _, stmt := range stmts {
		if !known.Has(stmt.Table) {
			continue
		}
		for _, tuple := range SplitTuples(stmt.Values) {
			res[stmt.Table] = append(res[stmt.Table], DecodeTuple(tuple))
		}
	}
	return res
}

// Parse runs the whole pipeline over a dump: locate, split, decode and aggregate.
func Parse(dump string, known TableSet) Result {
	return Aggregate(Locate(dump), known)
}

// Unknown returns the sorted distinct names of stmts tables that are not in known.
func Unknown(stmts []Statement, known TableSet) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, stmt := range stmts {
		if known.Has(stmt.Table) {
			continue
		}
		if _, ok := seen[stmt.Table]; !ok {
			seen[stmt.Table] = struct{}{}
			names = append(names, stmt.Table)
		}
	}
	sort.Strings(names)
	return names
}
