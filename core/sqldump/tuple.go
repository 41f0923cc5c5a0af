package sqldump

// SplitTuples returns the interiors of the outermost parenthesized groups of a VALUES
// clause, in source order.
//
// The scan is quote aware: parentheses inside quoted literals never open or close a tuple.
// Nested parentheses outside quotes (e.g. function calls) stay part of the interior.
// A tuple left open at the end of the clause is dropped.
func SplitTuples(clause string) []string {
	var tuples []string
	depth, start := 0, 0
	for i := 0; i < len(clause); {
		c := clause[i]
		switch {
		case isQuote(c):
			i = skipQuoted(clause, i)
			continue
		case c == '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case c == ')' && depth > 0:
			depth--
			if depth == 0 {
				tuples = append(tuples, clause[start:i])
			}
		}
		i++
	}
	return tuples
}

// skipQuoted returns the index just past the literal opened by the quote at s[i].
// Doubled quotes are escapes; an unterminated literal runs to the end of s.
func skipQuoted(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}
