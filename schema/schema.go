// Package schema describes the physical columns of a model's table, which is
// all a class needs to know about the underlying persistence framework.
package schema

// Schema is the column introspection API of a model type.
type Schema interface {
	Columns() []Column
}

// Table is a static Schema, typically built once from database metadata.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Cols    []Column `json:"columns" yaml:"columns"`
	columns map[string]int
}

// NewTable returns a Table with the given columns, in order.
func NewTable(name string, columns ...Column) *Table {
	t := &Table{Name: name, Cols: columns}
	t.index()
	return t
}

func (t *Table) index() {
	t.columns = make(map[string]int, len(t.Cols))
	for i, c := range t.Cols {
		t.columns[c.Name] = i
	}
}

// Columns returns a copy of the table columns.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.Cols))
	copy(out, t.Cols)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	if t.columns == nil || len(t.columns) != len(t.Cols) {
		t.index()
	}
	i, ok := t.columns[name]
	if !ok {
		return Column{}, false
	}
	return t.Cols[i], true
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	return Names(t.Cols)
}

// Names returns the names of columns, in order.
func Names(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by name in a slice returned by Schema.Columns.
func Lookup(columns []Column, name string) (Column, bool) {
	for _, c := range columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
