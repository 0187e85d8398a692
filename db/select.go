package db

import (
	"slices"
	"time"

	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/op"
	"github.com/nickyhof/SnapDB/sql"
)

func (engine *Engine) executeSelect(command sql.SelectCommand) (Result, error) {
	startTime := time.Now()

	source, err := engine.Database.Table(command.Table)
	if err != nil {
		return nil, err
	}

	var rows []core.Row
	var columns []string

	if command.Join == nil {
		rows = source.Select(command.Where)
		columns = source.ColumnNames()
	} else {
		joined, err := engine.Database.Table(command.Join.Table)
		if err != nil {
			return nil, err
		}
		rows = joinRows(source, joined, *command.Join, command.Where)
		columns = mergedColumns(source, joined)
	}

	if !command.SelectsAll() {
		columns = distinctColumns(command.Columns)
	}

	return QueryResult{
		Columns:          columns,
		Rows:             project(rows, columns),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

// joinRows is a nested-loop inner equality join. Each matching pair becomes
// one merged row in which the joined table's values win on name collisions.
// The predicate is applied to the merged rows. NULL never joins.
func joinRows(source, joined *op.Table, join sql.JoinClause, where core.Predicate) []core.Row {
	var rows []core.Row
	for _, left := range source.Scan(nil) {
		leftValue := left[join.LeftColumn]
		if leftValue == nil {
			continue
		}
		for _, right := range joined.Scan(nil) {
			if !core.Equal(leftValue, right[join.RightColumn]) {
				continue
			}

			merged := make(core.Row, len(left)+len(right))
			for column, value := range left {
				merged[column] = value
			}
			for column, value := range right {
				merged[column] = value
			}

			if where.Matches(merged) {
				rows = append(rows, merged)
			}
		}
	}
	return rows
}

// mergedColumns lists the source columns followed by the joined table's
// columns that the source does not already have.
func mergedColumns(source, joined *op.Table) []string {
	columns := source.ColumnNames()
	for _, column := range joined.ColumnNames() {
		if !slices.Contains(columns, column) {
			columns = append(columns, column)
		}
	}
	return columns
}

// distinctColumns drops repeated names from a projection, keeping the
// first occurrence.
func distinctColumns(columns []string) []string {
	distinct := make([]string, 0, len(columns))
	for _, column := range columns {
		if !slices.Contains(distinct, column) {
			distinct = append(distinct, column)
		}
	}
	return distinct
}

// project copies each row restricted to columns. Columns a row does not
// have are NULL.
func project(rows []core.Row, columns []string) []core.Row {
	projected := make([]core.Row, len(rows))
	for i, row := range rows {
		out := make(core.Row, len(columns))
		for _, column := range columns {
			out[column] = row[column]
		}
		projected[i] = out
	}
	return projected
}
