package survey

import "strings"

// Row is one parsed data line keyed by header name.
type Row map[string]string

// Value returns the cell stored under column.
func (r Row) Value(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Table is the result of a single ParseTable call.
type Table struct {
	Headers []string
	Rows    []Row

	// Skipped lists data lines dropped in lenient mode, in input order.
	Skipped []MalformedRowError
}

// ParseOptions controls how ParseTable treats malformed rows.
type ParseOptions struct {
	// Strict fails the whole parse on the first short row instead of
	// skipping it.
	Strict bool
}

// ParseTable splits raw comma-separated text into headers and row records.
//
// The input is trimmed, split on newlines, and the first line becomes the
// header list. Every later line is split on commas and its values are trimmed
// and assigned to headers by position. Values past the last header are
// ignored.
//
// Quoting is not supported: a comma inside a quoted field splits the field.
// Survey exports that need embedded commas must use another delimiter upstream.
//
// A line with fewer values than headers is a *MalformedRowError. In lenient
// mode the line is recorded in Table.Skipped and parsing continues with the
// next line; in strict mode the error is returned.
func ParseTable(raw string, opts ParseOptions) (*Table, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyInput
	}

	lines := strings.Split(text, "\n")

	headerFields := strings.Split(lines[0], ",")
	headers := make([]string, len(headerFields))
	for i, h := range headerFields {
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{
		Headers: headers,
		Rows:    make([]Row, 0, len(lines)-1),
	}

	for i, line := range lines[1:] {
		values := strings.Split(line, ",")
		if len(values) < len(headers) {
			rowErr := MalformedRowError{Line: i + 2, Fields: len(values), Want: len(headers)}
			if opts.Strict {
				return nil, &rowErr
			}
			table.Skipped = append(table.Skipped, rowErr)
			continue
		}

		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(values[j])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Column returns the values of one column in row order. Rows without the
// column contribute an empty string.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}
