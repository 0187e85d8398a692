package op

import "github.com/nickyhof/SnapDB/core"

// uniqueIndex maps a non-null column value to the position of the row that
// holds it.
type uniqueIndex map[core.Value]int

// indexSet holds the primary-key index and one index per unique column. A
// primary column that is also declared UNIQUE has entries in both.
type indexSet struct {
	primaryColumn string
	primary       uniqueIndex
	uniqueColumns []string
	unique        map[string]uniqueIndex
}

func newIndexSet(columns []core.Column) indexSet {
	set := indexSet{unique: make(map[string]uniqueIndex)}
	for _, column := range columns {
		if column.PrimaryKey {
			set.primaryColumn = column.Name
			set.primary = make(uniqueIndex)
		}
		if column.Unique {
			set.uniqueColumns = append(set.uniqueColumns, column.Name)
			set.unique[column.Name] = make(uniqueIndex)
		}
	}
	return set
}

// check reports the first index that already holds one of the row's values.
func (set indexSet) check(row core.Row) error {
	if set.primary != nil {
		value := row[set.primaryColumn]
		if _, exists := set.primary[value]; exists && value != nil {
			return core.Errorf(core.ConstraintError, "duplicate primary key '%s' for column '%s'",
				core.FormatValue(value), set.primaryColumn)
		}
	}
	for _, column := range set.uniqueColumns {
		value := row[column]
		if _, exists := set.unique[column][value]; exists && value != nil {
			return core.Errorf(core.ConstraintError, "duplicate unique value '%s' for column '%s'",
				core.FormatValue(value), column)
		}
	}
	return nil
}

func (set indexSet) add(row core.Row, position int) {
	if set.primary != nil {
		if value := row[set.primaryColumn]; value != nil {
			set.primary[value] = position
		}
	}
	for _, column := range set.uniqueColumns {
		if value := row[column]; value != nil {
			set.unique[column][value] = position
		}
	}
}

// buildIndexes scans rows in order and indexes each one at its position.
// It is shared by insert-time bookkeeping, the rebuild after delete or
// update and snapshot import, so all three leave identical indexes.
func buildIndexes(columns []core.Column, rows []core.Row) (indexSet, error) {
	set := newIndexSet(columns)
	for position, row := range rows {
		if err := set.check(row); err != nil {
			return indexSet{}, err
		}
		set.add(row, position)
	}
	return set, nil
}
