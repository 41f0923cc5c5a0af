package sqldump

import (
	"regexp"
	"strings"
)

// insertHead matches `INSERT INTO <table> [(<columns>)] VALUES`.
// The table may be quoted with backticks or double quotes and schema qualified.
var insertHead = regexp.MustCompile("(?is)\\bINSERT\\s+INTO\\s+([\\w.`\"]+)\\s*(?:\\([^)]*\\))?\\s*VALUES\\b")

// Statement is one INSERT statement found in a dump.
type Statement struct {
	Table  string // lower-cased, unquoted, without schema
	Values string // raw VALUES clause, without the trailing semicolon
}

// Locate finds every INSERT statement of dump, in source order.
// Statements inside `--` or `/* */` comments and inside quoted literals are skipped.
// A VALUES clause ends at the first semicolon outside quotes, or at the end of dump.
//
// Only doubled quotes escape a quote. A MySQL backslash escape (`\'`) closes the literal
// early, so the rest of the clause is read as one unterminated literal and the statement
// yields no tuples.
func Locate(dump string) []Statement {
	var stmts []Statement
	for pos := 0; pos < len(dump); {
		loc := insertHead.FindStringSubmatchIndex(dump[pos:])
		if loc == nil {
			break
		}
		head := pos + loc[0]
		if next := skipNoise(dump, pos, head); next > head {
			pos = next // head is inside a comment or a literal
			continue
		}
		table := normalizeTable(dump[pos+loc[2] : pos+loc[3]])
		start := pos + loc[1]
		end := clauseEnd(dump, start)
		stmts = append(stmts, Statement{
			Table:  table,
			Values: strings.TrimSpace(dump[start:end]),
		})
		pos = end + 1
	}
	return stmts
}

// clauseEnd returns the index of the first semicolon outside quotes at or after i.
func clauseEnd(s string, i int) int {
	for i < len(s) {
		switch c := s[i]; {
		case isQuote(c):
			i = skipQuoted(s, i)
		case c == ';':
			return i
		default:
			i++
		}
	}
	return len(s)
}

// skipNoise scans s from i up to limit, jumping over quoted literals and comments.
// The result is past limit when limit falls inside one of them.
func skipNoise(s string, i, limit int) int {
	for i < limit {
		switch c := s[i]; {
		case isQuote(c):
			i = skipQuoted(s, i)
		case c == '-' && strings.HasPrefix(s[i:], "--"):
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(s)
			}
		case c == '/' && strings.HasPrefix(s[i:], "/*"):
			if end := strings.Index(s[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(s)
			}
		default:
			i++
		}
	}
	return i
}

func normalizeTable(ident string) string {
	ident = strings.NewReplacer("`", "", `"`, "").Replace(ident)
	if idx := strings.LastIndexByte(ident, '.'); idx >= 0 {
		ident = ident[idx+1:]
	}
	return strings.ToLower(ident)
}
