package core

import "fmt"

// Value is a single cell: int64, float64, string, bool or nil.
type Value = any

type Row map[string]Value

// Clone returns a shallow copy of the row.
func (row Row) Clone() Row {
	clone := make(Row, len(row))
	for k, v := range row {
		clone[k] = v
	}
	return clone
}

// Predicate is a conjunction of column equality tests. A nil predicate
// matches every row.
type Predicate map[string]Value

// Matches reports whether every column named by the predicate is present in
// the row and holds an equal value.
func (predicate Predicate) Matches(row Row) bool {
	for column, want := range predicate {
		got, ok := row[column]
		if !ok || !Equal(got, want) {
			return false
		}
	}
	return true
}

// Equal compares two values without coercion: 1 and 1.0 are different.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a.(type) {
	case int64, float64, string, bool:
	default:
		return false
	}
	return a == b
}

// TypeName describes a value for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "NULL"
	case int64:
		return "INTEGER"
	case float64:
		return "FLOAT"
	case string:
		return "STRING"
	case bool:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FormatValue renders a value for tabular output.
func FormatValue(v Value) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

// IsScalar reports whether v is one of the supported cell types.
func IsScalar(v Value) bool {
	switch v.(type) {
	case nil, int64, float64, string, bool:
		return true
	default:
		return false
	}
}
