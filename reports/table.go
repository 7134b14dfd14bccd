package reports

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// Column extracts one cell from a row and formats it. A nil Formatter means OriginalFormatter.
type Column[T any] struct {
	Header    string
	Value     func(row T) any
	Formatter Formatter
}

// Table describes how rows of T are laid out in a report.
type Table[T any] struct {
	columns []Column[T]
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{}
}

func (t *Table[T]) Add(header string, value func(row T) any, formatter Formatter) *Table[T] {
	if formatter == nil {
		formatter = OriginalFormatter{}
	}
	t.columns = append(t.columns, Column[T]{Header: header, Value: value, Formatter: formatter})
	return t
}

func (t *Table[T]) Headers() []string {
	return lo.Map(t.columns, func(c Column[T], _ int) string {
		return c.Header
	})
}

// Rows formats every row. The first formatting error aborts with the row and column named.
func (t *Table[T]) Rows(ctx context.Context, rows []T) ([][]string, error) {
	result := make([][]string, 0, len(rows))
	for i, row := range rows {
		cells := make([]string, len(t.columns))
		for j, column := range t.columns {
			cell, err := column.Formatter.Format(ctx, column.Value(row))
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, column.Header, err)
			}
			cells[j] = cell
		}
		result = append(result, cells)
	}
	return result, nil
}

// Generate formats rows and renders them with GenerateReport.
func (t *Table[T]) Generate(ctx context.Context, format Format, rows []T, opts ...ReportOption) ([]byte, string, error) {
	data, err := t.Rows(ctx, rows)
	if err != nil {
		return nil, "", err
	}
	return GenerateReport(format, t.Headers(), data, opts...)
}
