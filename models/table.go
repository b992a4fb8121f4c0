package models

// RawItem is one untyped document from an API page, as decoded from JSON.
// Values are nil, bool, int64, float64, string, time.Time after coercion,
// or nested map[string]any / []any.
type RawItem = map[string]any

// Table is an ordered, dynamically-typed result set. Column order is
// significant: it becomes the column order of the destination table and the
// header order of spreadsheet exports.
type Table struct {
	Columns []string
	Rows    [][]any
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds a row. The row must be aligned with Columns; callers build
// rows positionally so this is not re-checked per cell.
func (t *Table) AppendRow(row []any) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
