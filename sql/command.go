package sql

import "github.com/nickyhof/SnapDB/core"

type CommandType int

const (
	CreateTableCommandType CommandType = iota
	InsertCommandType
	SelectCommandType
	UpdateCommandType
	DeleteCommandType
)

func (t CommandType) String() string {
	switch t {
	case CreateTableCommandType:
		return "CREATE TABLE"
	case InsertCommandType:
		return "INSERT"
	case SelectCommandType:
		return "SELECT"
	case UpdateCommandType:
		return "UPDATE"
	case DeleteCommandType:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed statement, ready for execution.
type Command interface {
	Type() CommandType
}

// Mutating reports whether executing the command changes table contents.
func Mutating(command Command) bool {
	return command.Type() != SelectCommandType
}

type CreateTableCommand struct {
	Table   string
	Columns []core.Column
}

type InsertCommand struct {
	Table  string
	Values core.Row
}

type SelectCommand struct {
	Table   string
	Columns []string // nil selects every column
	Where   core.Predicate
	Join    *JoinClause
}

// SelectsAll reports whether the projection is "*".
func (c SelectCommand) SelectsAll() bool {
	return len(c.Columns) == 0
}

// JoinClause is an inner equality join. LeftColumn belongs to the source
// table and RightColumn to the joined table.
type JoinClause struct {
	Table       string
	LeftColumn  string
	RightColumn string
}

type UpdateCommand struct {
	Table string
	Set   core.Row
	Where core.Predicate
}

type DeleteCommand struct {
	Table string
	Where core.Predicate
}

func (c CreateTableCommand) Type() CommandType {
	return CreateTableCommandType
}

func (c InsertCommand) Type() CommandType {
	return InsertCommandType
}

func (c SelectCommand) Type() CommandType {
	return SelectCommandType
}

func (c UpdateCommand) Type() CommandType {
	return UpdateCommandType
}

func (c DeleteCommand) Type() CommandType {
	return DeleteCommandType
}
