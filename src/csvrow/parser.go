// Package csvrow splits broker CSV exports into header and data records.
package csvrow

import "strings"

const byteOrderMark = "\ufeff"

// Table is a parsed export. Rows may be ragged; use Field to read them.
type Table struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Parse reads raw text. The first line is always the header line, blank data
// lines are skipped and every field is trimmed.
func Parse(text string) *Table {
	text = strings.TrimPrefix(text, byteOrderMark)
	if strings.TrimSpace(text) == "" {
		return &Table{}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	table := &Table{Headers: SplitLine(lines[0])}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		table.Rows = append(table.Rows, SplitLine(line))
	}
	return table
}

// SplitLine splits a single line on commas outside double quotes. A doubled
// quote inside a quoted section is a literal quote.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuotes && ch == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			current.WriteByte(ch)
		case ch == '"':
			inQuotes = true
		case ch == ',':
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether header is present.
func (t *Table) Has(header string) bool {
	_, ok := t.lookup()[header]
	return ok
}

// Field returns the value of header in row, or "" when the header is unknown
// or the row is too short.
func (t *Table) Field(row int, header string) string {
	col, ok := t.lookup()[header]
	if !ok || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// First returns the first non-empty value among headers, in order.
func (t *Table) First(row int, headers ...string) string {
	for _, h := range headers {
		if v := t.Field(row, h); v != "" {
			return v
		}
	}
	return ""
}

// Record returns row i keyed by header.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Headers))
	for _, h := range t.Headers {
		rec[h] = t.Field(i, h)
	}
	return rec
}

func (t *Table) lookup() map[string]int {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Headers))
		for i, h := range t.Headers {
			if _, dup := t.index[h]; !dup {
				t.index[h] = i
			}
		}
	}
	return t.index
}
