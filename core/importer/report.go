package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/escola/core"
)

type (
	RowError struct {
		Row int // 1-based position of the row among the table's rows in the dump
		Err string
	}

	TableReport struct {
		Name     string
		Parsed   int
		Inserted int
		Failed   int
		Errors   []RowError // at most MaxRowErrors

		// EmptyStatements counts INSERT statements that yielded no complete tuple.
		EmptyStatements int
	}

	Report struct {
		RunID      string
		StartedAt  time.Time
		FinishedAt time.Time
		Tables     []TableReport
		Unknown    []string // tables found in the dump but not in the schema
	}
)

func (tr *TableReport) fail(idx int, err error) {
	tr.Failed++
	if len(tr.Errors) < MaxRowErrors {
		tr.Errors = append(tr.Errors, RowError{Row: idx + 1, Err: err.Error()})
	}
}

// Totals sums up the table reports.
func (r Report) Totals() TableReport {
	total := TableReport{Name: "total"}
	for _, t := range r.Tables {
		total.Parsed += t.Parsed
		total.Inserted += t.Inserted
		total.Failed += t.Failed
	}
	return total
}

func (r Report) String() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "Import %s\n", r.RunID)
	_, _ = fmt.Fprintf(&b, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&b, "Finished: %s (%s)\n\n", r.FinishedAt.Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	_, _ = fmt.Fprintf(&b, "%-16s %8s %8s %8s\n", "table", "parsed", "inserted", "failed")
	row := func(t TableReport) {
		_, _ = fmt.Fprintf(&b, "%-16s %8d %8d %8d\n", t.Name, t.Parsed, t.Inserted, t.Failed)
	}
	for _, t := range r.Tables {
		row(t)
	}
	row(r.Totals())

	if len(r.Unknown) > 0 {
		_, _ = fmt.Fprintf(&b, "\nSkipped tables: %s\n", strings.Join(r.Unknown, ", "))
	}

	var empty []string
	for _, t := range r.Tables {
		if t.EmptyStatements > 0 {
			empty = append(empty, fmt.Sprintf("%s (%d)", t.Name, t.EmptyStatements))
		}
	}
	if len(empty) > 0 {
		_, _ = fmt.Fprintf(&b, "\nStatements without rows: %s\n", strings.Join(empty, ", "))
	}

	for _, t := range r.Tables {
		if len(t.Errors) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(&b, "\nErrors in %s:\n", t.Name)
		for _, e := range t.Errors {
			_, _ = fmt.Fprintf(&b, "  row %d: %s\n", e.Row, e.Err)
		}
		if more := t.Failed - len(t.Errors); more > 0 {
			_, _ = fmt.Fprintf(&b, "  ... and %d more\n", more)
		}
	}
	return b.String()
}

// CSV renders one line per table, followed by one line per kept row error.
func (r Report) CSV() ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	records := [][]string{{"table", "parsed", "inserted", "failed", "row", "error"}}
	for _, t := range r.Tables {
		records = append(records, []string{t.Name, strconv.Itoa(t.Parsed), strconv.Itoa(t.Inserted), strconv.Itoa(t.Failed), "", ""})
	}
	for _, t := range r.Tables {
		for _, e := range t.Errors {
			records = append(records, []string{t.Name, "", "", "", strconv.Itoa(e.Row), e.Err})
		}
	}
	if err := w.WriteAll(records); err != nil {
		return nil, errors.Wrap(err, "writing report csv")
	}
	return buf.Bytes(), nil
}

// Message builds the report email sent to the operators, with the CSV report attached.
func (r Report) Message(to ...mail.Address) (*core.EmailMessage, error) {
	total := r.Totals()
	msg := &core.EmailMessage{
		To:          to,
		Subject:     fmt.Sprintf("Import %s: %d inserted, %d failed", r.RunID, total.Inserted, total.Failed),
		TextContent: r.String(),
	}
	data, err := r.CSV()
	if err != nil {
		return nil, err
	}
	msg.Attach(data, "import-"+r.RunID+".csv", "text/csv")
	return msg, nil
}
