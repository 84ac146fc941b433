package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// Columns names which header plays which role in the charts.
//
// Each selector is either a header name or a zero-based header position
// written as a decimal number. An exact header name wins over a position, so a
// column literally called "6" is still addressable by name.
type Columns struct {
	Label      string // scatter point labels
	Frequency  string // frequency answers, scatter x axis
	Importance string // importance answers, scatter y axis
	Numeric    string // integer answers
	Category   string // bar chart categories
}

// DefaultColumns matches the column order of the original survey export.
func DefaultColumns() Columns {
	return Columns{
		Label:      "0",
		Frequency:  "1",
		Importance: "6",
		Numeric:    "14",
		Category:   "15",
	}
}

// Resolve maps every selector onto a concrete header name.
func (c Columns) Resolve(headers []string) (Columns, error) {
	var resolved Columns
	var err error

	fields := []struct {
		role string
		in   string
		out  *string
	}{
		{"label", c.Label, &resolved.Label},
		{"frequency", c.Frequency, &resolved.Frequency},
		{"importance", c.Importance, &resolved.Importance},
		{"numeric", c.Numeric, &resolved.Numeric},
		{"category", c.Category, &resolved.Category},
	}
	for _, f := range fields {
		if *f.out, err = resolveColumn(headers, f.in); err != nil {
			return Columns{}, fmt.Errorf("%s column: %w", f.role, err)
		}
	}
	return resolved, nil
}

func resolveColumn(headers []string, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", fmt.Errorf("%w: empty selector", ErrUnknownColumn)
	}

	for _, h := range headers {
		if h == selector {
			return h, nil
		}
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx >= 0 && idx < len(headers) {
			return headers[idx], nil
		}
		return "", fmt.Errorf("%w: position %d, file has %d columns", ErrUnknownColumn, idx, len(headers))
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, selector)
}

// Override returns c with every non-empty selector of o applied on top.
func (c Columns) Override(o Columns) Columns {
	pick := func(base, over string) string {
		if over = strings.TrimSpace(over); over != "" {
			return over
		}
		return base
	}
	return Columns{
		Label:      pick(c.Label, o.Label),
		Frequency:  pick(c.Frequency, o.Frequency),
		Importance: pick(c.Importance, o.Importance),
		Numeric:    pick(c.Numeric, o.Numeric),
		Category:   pick(c.Category, o.Category),
	}
}
