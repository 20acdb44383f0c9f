package domain

import "slices"

// A Source identifies one worksheet of a spreadsheet file.
//
// Empty Sheet means the first sheet of the workbook.
type Source struct {
	Path  string
	Sheet string
}

func (s Source) String() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + "#" + s.Sheet
}

// A Table is a raw tabular source restricted to a set of columns.
//
// Cells are trimmed strings, an empty cell is a null value.
// Tables returned by readers are shared and must not be mutated.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// Index returns the position of the column or -1.
func (t Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// Renamed returns a table whose columns are renamed by m.
//
// Rows are shared with t.
func (t Table) Renamed(m map[string]string) Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if to, ok := m[c]; ok {
			c = to
		}
		cols[i] = c
	}
	return Table{Source: t.Source, Columns: cols, Rows: t.Rows}
}

// Cell returns the value of column i in row, or "" when the row is short.
func (t Table) Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
