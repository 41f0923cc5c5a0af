package sqldump

import "strings"

const nullToken = "NULL"

type decodeState int

const (
	unquoted decodeState = iota
	inQuote
)

func isQuote(c byte) bool { return c == '\'' || c == '"' }

// DecodeTuple splits the interior of one parenthesized tuple into its values.
//
// Commas inside quotes belong to the value; a doubled quote inside a quoted literal is one
// literal quote (SQL escaping). The tuple always yields one more value than it has commas
// outside quotes, so an empty interior decodes to a single empty string.
// Backslashes are literal characters: `'O\'Neil'` closes the literal after the backslash.
func DecodeTuple(tuple string) Row {
	var (
		row    Row
		buf    strings.Builder
		state  = unquoted
		quote  byte
		quoted bool // the current field opened a quote at least once
	)

	emit := func() {
		row = append(row, finalize(buf.String(), quoted))
		buf.Reset()
		quoted = false
	}

	for i := 0; i < len(tuple); i++ {
		c := tuple[i]
		switch state {
		case unquoted:
			switch {
			case isQuote(c):
				state, quote, quoted = inQuote, c, true
			case c == ',':
				emit()
			default:
				buf.WriteByte(c)
			}
		case inQuote:
			switch {
			case c == quote && i+1 < len(tuple) && tuple[i+1] == quote:
				buf.WriteByte(c)
				i++
			case c == quote:
				state = unquoted
			default:
				buf.WriteByte(c)
			}
		}
	}
	emit()
	return row
}

// finalize applies the null policy: only a bare, never-quoted NULL is SQL NULL.
func finalize(raw string, quoted bool) Value {
	s := strings.TrimSpace(raw)
	if !quoted && s == nullToken {
		return Null()
	}
	return Str(stripQuotes(s))
}

// stripQuotes removes one layer of surrounding matching quotes, if any are left.
func stripQuotes(s string) string {
	if n := len(s); n >= 2 && isQuote(s[0]) && s[n-1] == s[0] {
		return s[1 : n-1]
	}
	return s
}
