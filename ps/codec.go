package ps

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nickyhof/SnapDB/core"
)

// The document layout is
//
//	{"tables": {"users": {"name": "users", "columns": [...], "rows": [...]}}}
//
// Numbers written with a fraction or exponent load as floats and all other
// numbers as integers, so floats are always written with a fraction.

type snapshotDocument struct {
	Tables map[string]tableDocument `json:"tables"`
}

type tableDocument struct {
	Name    string           `json:"name"`
	Columns []columnDocument `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// columnDocument mirrors core.Column. Nullable is a pointer so that a
// missing flag can default to true.
type columnDocument struct {
	Name       string          `json:"name"`
	Type       core.ColumnType `json:"type"`
	PrimaryKey bool            `json:"is_primary"`
	Unique     bool            `json:"is_unique"`
	Nullable   *bool           `json:"nullable,omitempty"`
}

// floatValue encodes a float64 so that it never looks like an integer.
type floatValue float64

func (f floatValue) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("cannot encode %v", v)
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// EncodeSnapshot renders the snapshot document, indented for readability.
func EncodeSnapshot(snapshot core.Snapshot) ([]byte, error) {
	document := snapshotDocument{Tables: make(map[string]tableDocument, len(snapshot.Tables))}

	for name, table := range snapshot.Tables {
		columns := make([]columnDocument, len(table.Columns))
		for i, column := range table.Columns {
			nullable := column.Nullable
			columns[i] = columnDocument{
				Name:       column.Name,
				Type:       column.Type,
				PrimaryKey: column.PrimaryKey,
				Unique:     column.Unique,
				Nullable:   &nullable,
			}
		}

		rows := make([]map[string]any, len(table.Rows))
		for i, row := range table.Rows {
			encoded := make(map[string]any, len(row))
			for column, value := range row {
				if f, ok := value.(float64); ok {
					encoded[column] = floatValue(f)
				} else {
					encoded[column] = value
				}
			}
			rows[i] = encoded
		}

		tableName := table.Name
		if tableName == "" {
			tableName = name
		}
		document.Tables[name] = tableDocument{Name: tableName, Columns: columns, Rows: rows}
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot document. A document without a tables
// key is an empty snapshot.
func DecodeSnapshot(data []byte) (core.Snapshot, error) {
	var document snapshotDocument

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return core.Snapshot{}, fmt.Errorf("malformed snapshot: %w", err)
	}

	snapshot := core.Snapshot{Tables: make(map[string]core.TableSnapshot, len(document.Tables))}
	for name, table := range document.Tables {
		columns := make([]core.Column, len(table.Columns))
		for i, column := range table.Columns {
			columns[i] = core.Column{
				Name:       column.Name,
				Type:       column.Type,
				PrimaryKey: column.PrimaryKey,
				Unique:     column.Unique,
				Nullable:   column.Nullable == nil || *column.Nullable,
			}
		}

		rows := make([]core.Row, len(table.Rows))
		for i, row := range table.Rows {
			decoded := make(core.Row, len(row))
			for column, value := range row {
				v, err := decodeValue(value)
				if err != nil {
					return core.Snapshot{}, fmt.Errorf("malformed snapshot: table %s row %d column %s: %w", name, i, column, err)
				}
				decoded[column] = v
			}
			rows[i] = decoded
		}

		tableName := table.Name
		if tableName == "" {
			tableName = name
		}
		snapshot.Tables[name] = core.TableSnapshot{Name: tableName, Columns: columns, Rows: rows}
	}

	return snapshot, nil
}

func decodeValue(value any) (core.Value, error) {
	switch v := value.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return strconv.ParseFloat(s, 64)
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return nil, fmt.Errorf("unsupported value %v", v)
	}
}
