package op

import (
	"iter"
	"slices"

	"github.com/nickyhof/SnapDB/core"
)

// Table owns one table's schema, its rows in append order and the
// primary/unique indexes over them. Rows are addressed by position.
type Table struct {
	Name    string
	Columns []core.Column

	rows    []core.Row
	indexes indexSet
}

func NewTable(name string, columns []core.Column) *Table {
	return &Table{
		Name:    name,
		Columns: columns,
		indexes: newIndexSet(columns),
	}
}

func (table *Table) Column(name string) (core.Column, bool) {
	for _, column := range table.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return core.Column{}, false
}

func (table *Table) ColumnNames() []string {
	names := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		names[i] = column.Name
	}
	return names
}

func (table *Table) PrimaryKey() (string, bool) {
	return table.indexes.primaryColumn, table.indexes.primary != nil
}

func (table *Table) Len() int {
	return len(table.rows)
}

// Row returns the row stored at position. The row must not be modified.
func (table *Table) Row(position int) core.Row {
	return table.rows[position]
}

// Lookup finds a row by primary key using the index.
func (table *Table) Lookup(key core.Value) (core.Row, bool) {
	if table.indexes.primary == nil || key == nil || !core.IsScalar(key) {
		return nil, false
	}
	position, ok := table.indexes.primary[key]
	if !ok {
		return nil, false
	}
	return table.rows[position], true
}

// Scan yields the position and row of every row matching the predicate, in
// row order. A nil predicate matches all rows.
func (table *Table) Scan(predicate core.Predicate) iter.Seq2[int, core.Row] {
	return func(yield func(int, core.Row) bool) {
		for position, row := range table.rows {
			if !predicate.Matches(row) {
				continue
			}
			if !yield(position, row) {
				return
			}
		}
	}
}

// Positions returns the positions of the rows matching the predicate.
func (table *Table) Positions(predicate core.Predicate) []int {
	var positions []int
	for position := range table.Scan(predicate) {
		positions = append(positions, position)
	}
	return positions
}

// Select returns the stored rows matching the predicate. The rows are views
// into the table and must not be modified or kept across mutations.
func (table *Table) Select(predicate core.Predicate) []core.Row {
	var rows []core.Row
	for _, row := range table.Scan(predicate) {
		rows = append(rows, row)
	}
	return rows
}

// Insert appends a row built from values. Missing columns are null and
// values for undeclared columns are ignored.
func (table *Table) Insert(values core.Row) error {
	row := make(core.Row, len(table.Columns))
	for _, column := range table.Columns {
		value := values[column.Name]
		if err := validate(column, value); err != nil {
			return err
		}
		row[column.Name] = value
	}

	if err := table.indexes.check(row); err != nil {
		return err
	}

	position := len(table.rows)
	table.rows = append(table.rows, row)
	table.indexes.add(row, position)
	return nil
}

// Update applies the assignments to the rows at positions. Assignments to
// undeclared columns are skipped. New values are checked like inserted ones
// and the statement is applied to all rows or none.
func (table *Table) Update(positions []int, assignments core.Row) (int, error) {
	set := make(core.Row, len(assignments))
	for name, value := range assignments {
		column, ok := table.Column(name)
		if !ok {
			continue
		}
		if err := validate(column, value); err != nil {
			return 0, err
		}
		set[name] = value
	}
	if len(positions) == 0 || len(set) == 0 {
		return len(positions), nil
	}

	rows := slices.Clone(table.rows)
	for _, position := range positions {
		row := rows[position].Clone()
		for name, value := range set {
			row[name] = value
		}
		rows[position] = row
	}

	indexes, err := buildIndexes(table.Columns, rows)
	if err != nil {
		return 0, err
	}

	table.rows = rows
	table.indexes = indexes
	return len(positions), nil
}

// Delete removes the rows at positions, keeping the survivors in order, and
// rebuilds every index.
func (table *Table) Delete(positions []int) int {
	if len(positions) == 0 {
		return 0
	}

	remove := make(map[int]bool, len(positions))
	for _, position := range positions {
		remove[position] = true
	}

	kept := make([]core.Row, 0, len(table.rows)-len(remove))
	for position, row := range table.rows {
		if !remove[position] {
			kept = append(kept, row)
		}
	}
	removed := len(table.rows) - len(kept)

	table.rows = kept
	// survivors were unique before, so the rebuild cannot fail
	table.indexes, _ = buildIndexes(table.Columns, table.rows)
	return removed
}

// Reindex recomputes all indexes from the current rows.
func (table *Table) Reindex() error {
	indexes, err := buildIndexes(table.Columns, table.rows)
	if err != nil {
		return err
	}
	table.indexes = indexes
	return nil
}

func (table *Table) Snapshot() core.TableSnapshot {
	rows := make([]core.Row, len(table.rows))
	for i, row := range table.rows {
		rows[i] = row.Clone()
	}
	return core.TableSnapshot{
		Name:    table.Name,
		Columns: slices.Clone(table.Columns),
		Rows:    rows,
	}
}

// FromSnapshot rebuilds a table from its persisted form. Rows are loaded as
// stored and the indexes are recomputed by scanning them in order.
func FromSnapshot(snapshot core.TableSnapshot) (*Table, error) {
	if snapshot.Name == "" {
		return nil, core.Errorf(core.UnknownError, "table snapshot has no name")
	}

	table := NewTable(snapshot.Name, slices.Clone(snapshot.Columns))
	table.rows = make([]core.Row, len(snapshot.Rows))
	for i, row := range snapshot.Rows {
		for name, value := range row {
			if !core.IsScalar(value) {
				return nil, core.Errorf(core.TypeError, "table '%s' row %d: unsupported value for column '%s'",
					snapshot.Name, i, name)
			}
		}
		table.rows[i] = row.Clone()
	}

	if err := table.Reindex(); err != nil {
		return nil, err
	}
	return table, nil
}

func validate(column core.Column, value core.Value) error {
	if value == nil {
		if !column.Nullable && !column.PrimaryKey {
			return core.Errorf(core.ConstraintError, "column '%s' cannot be null", column.Name)
		}
		return nil
	}
	if !core.IsScalar(value) || !column.Type.Accepts(value) {
		return core.Errorf(core.TypeError, "column '%s' expected %s, got %s",
			column.Name, column.Type, core.TypeName(value))
	}
	return nil
}
