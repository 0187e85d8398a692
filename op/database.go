package op

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/nickyhof/SnapDB/core"
)

// Database is the set of tables of one instance. It has no locking of its
// own; callers that share it between goroutines must serialize access.
type Database struct {
	tables map[string]*Table
}

func NewDatabase() *Database {
	return &Database{tables: make(map[string]*Table)}
}

func (database *Database) CreateTable(name string, columns []core.Column) (*Table, error) {
	if _, exists := database.tables[name]; exists {
		return nil, core.Errorf(core.ConflictError, "Table '%s' already exists.", name)
	}
	table := NewTable(name, columns)
	database.tables[name] = table
	return table, nil
}

func (database *Database) Table(name string) (*Table, error) {
	table, ok := database.tables[name]
	if !ok {
		return nil, core.Errorf(core.NotFoundError, "Table '%s' does not exist.", name)
	}
	return table, nil
}

func (database *Database) DropTable(name string) error {
	if _, ok := database.tables[name]; !ok {
		return core.Errorf(core.NotFoundError, "Table '%s' does not exist.", name)
	}
	delete(database.tables, name)
	return nil
}

// TableNames returns the table names in sorted order.
func (database *Database) TableNames() []string {
	return slices.Sorted(maps.Keys(database.tables))
}

func (database *Database) Snapshot() core.Snapshot {
	snapshot := core.Snapshot{Tables: make(map[string]core.TableSnapshot, len(database.tables))}
	for name, table := range database.tables {
		snapshot.Tables[name] = table.Snapshot()
	}
	return snapshot
}

// Restore loads every table of the snapshot, replacing tables of the same
// name. Tables that fail to load are skipped and reported together; the
// others are kept.
func (database *Database) Restore(snapshot core.Snapshot) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(snapshot.Tables)) {
		tableSnapshot := snapshot.Tables[name]
		tableSnapshot.Name = name
		table, err := FromSnapshot(tableSnapshot)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", name, err))
			continue
		}
		database.tables[name] = table
	}
	return errors.Join(errs...)
}
