package core

import (
	"fmt"
	"strings"
)

type ColumnType int

const (
	IntegerType ColumnType = iota
	StringType
	FloatType
	BooleanType
)

// String returns the name used in snapshots and schema listings.
func (t ColumnType) String() string {
	switch t {
	case IntegerType:
		return "INTEGER"
	case StringType:
		return "STRING"
	case FloatType:
		return "FLOAT"
	case BooleanType:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseTypeKeyword maps a CREATE TABLE type keyword to a ColumnType.
func ParseTypeKeyword(keyword string) (ColumnType, bool) {
	switch strings.ToUpper(keyword) {
	case "INT", "INTEGER":
		return IntegerType, true
	case "TEXT", "STRING":
		return StringType, true
	case "FLOAT":
		return FloatType, true
	case "BOOL":
		return BooleanType, true
	default:
		return 0, false
	}
}

// ParseTypeName maps a snapshot type name (see String) to a ColumnType.
func ParseTypeName(name string) (ColumnType, error) {
	switch name {
	case "INTEGER":
		return IntegerType, nil
	case "STRING":
		return StringType, nil
	case "FLOAT":
		return FloatType, nil
	case "BOOLEAN":
		return BooleanType, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", name)
	}
}

func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeName(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Accepts reports whether a non-null value may be stored in a column of this
// type. Only INTEGER and STRING columns are checked strictly.
func (t ColumnType) Accepts(v Value) bool {
	switch t {
	case IntegerType:
		_, ok := v.(int64)
		return ok
	case StringType:
		_, ok := v.(string)
		return ok
	default:
		return true
	}
}

type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	PrimaryKey bool       `json:"is_primary"`
	Unique     bool       `json:"is_unique"`
	Nullable   bool       `json:"nullable"`
}

// NewColumn returns a nullable column of the given type.
func NewColumn(name string, columnType ColumnType) Column {
	return Column{Name: name, Type: columnType, Nullable: true}
}

// Indexed reports whether the column is backed by a unique index.
func (c Column) Indexed() bool {
	return c.PrimaryKey || c.Unique
}

// TableSnapshot is the persisted form of one table.
type TableSnapshot struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Snapshot is the persisted form of a whole database.
type Snapshot struct {
	Tables map[string]TableSnapshot `json:"tables"`
}

// Identity identifies the author of snapshot commits.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (identity Identity) String() string {
	return fmt.Sprintf("%s <%s>", identity.Name, identity.Email)
}
