package sql

import (
	"math"
	"strconv"
	"strings"

	"github.com/nickyhof/SnapDB/core"
)

type Parser struct {
	lexer *Lexer
}

// NewParser prepares one statement for parsing. Surrounding whitespace and
// any number of trailing semicolons are ignored.
func NewParser(sql string) *Parser {
	return &Parser{lexer: NewLexer(trimStatement(sql))}
}

// Parse parses a single statement.
func Parse(sql string) (Command, error) {
	return NewParser(sql).Parse()
}

func trimStatement(sql string) string {
	return strings.TrimRight(strings.TrimSpace(sql), "; \t\r\n")
}

func (parser *Parser) Parse() (Command, error) {
	token := parser.lexer.NextToken()

	var command Command
	var err error
	switch token.Type {
	case EOF:
		return nil, syntaxError("empty statement")
	case Create:
		if _, err = parser.expect(TableKeyword, "TABLE after CREATE"); err != nil {
			return nil, err
		}
		command, err = ParseCreateTable(parser)
	case Insert:
		if _, err = parser.expect(Into, "INTO after INSERT"); err != nil {
			return nil, err
		}
		command, err = ParseInsert(parser)
	case Select:
		command, err = ParseSelect(parser)
	case Update:
		command, err = ParseUpdate(parser)
	case Delete:
		if _, err = parser.expect(From, "FROM after DELETE"); err != nil {
			return nil, err
		}
		command, err = ParseDelete(parser)
	default:
		return nil, syntaxError("unknown statement type %q", token.Value)
	}
	if err != nil {
		return nil, err
	}

	if token = parser.lexer.NextToken(); token.Type != EOF {
		return nil, unexpected(token, "end of statement")
	}
	return command, nil
}

func ParseCreateTable(parser *Parser) (Command, error) {
	var command CreateTableCommand

	table, err := parser.tableName()
	if err != nil {
		return nil, err
	}
	command.Table = table

	if _, err := parser.expect(ParenOpen, "'(' after table name"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	hasPrimaryKey := false
	for {
		column, err := parseColumnDefinition(parser)
		if err != nil {
			return nil, err
		}
		if seen[column.Name] {
			return nil, syntaxError("duplicate column %q", column.Name)
		}
		seen[column.Name] = true
		if column.PrimaryKey {
			if hasPrimaryKey {
				return nil, syntaxError("multiple primary keys for table %q", command.Table)
			}
			hasPrimaryKey = true
		}
		command.Columns = append(command.Columns, column)

		token := parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		}
		return nil, unexpected(token, "',' or ')' in column list")
	}

	return command, nil
}

// parseColumnDefinition parses `name type [PRIMARY KEY] [UNIQUE] [NOT NULL]`.
// The flags may appear in any order.
func parseColumnDefinition(parser *Parser) (core.Column, error) {
	token := parser.lexer.NextToken()
	if !token.IsWord() || strings.Contains(token.Value, ".") {
		return core.Column{}, unexpected(token, "column name")
	}
	name := token.Value

	token = parser.lexer.NextToken()
	if !token.IsWord() {
		return core.Column{}, unexpected(token, "column type")
	}
	columnType, ok := core.ParseTypeKeyword(token.Value)
	if !ok {
		return core.Column{}, syntaxError("unknown column type %q", token.Value)
	}

	column := core.NewColumn(name, columnType)
	for {
		switch parser.lexer.PeekToken().Type {
		case Primary:
			parser.lexer.NextToken()
			if _, err := parser.expect(Key, "KEY after PRIMARY"); err != nil {
				return core.Column{}, err
			}
			column.PrimaryKey = true
		case Unique:
			parser.lexer.NextToken()
			column.Unique = true
		case Not:
			parser.lexer.NextToken()
			if _, err := parser.expect(Null, "NULL after NOT"); err != nil {
				return core.Column{}, err
			}
			column.Nullable = false
		default:
			return column, nil
		}
	}
}

func ParseInsert(parser *Parser) (Command, error) {
	var command InsertCommand

	table, err := parser.tableName()
	if err != nil {
		return nil, err
	}
	command.Table = table

	if _, err := parser.expect(ParenOpen, "'(' after table name"); err != nil {
		return nil, err
	}

	var columns []string
	for {
		column, err := parser.columnName()
		if err != nil {
			return nil, err
		}
		columns = append(columns, column)

		token := parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		}
		return nil, unexpected(token, "',' or ')' in column list")
	}

	if _, err := parser.expect(Values, "VALUES"); err != nil {
		return nil, err
	}
	if _, err := parser.expect(ParenOpen, "'(' after VALUES"); err != nil {
		return nil, err
	}

	var values []core.Value
	for {
		token := parser.lexer.NextToken()
		value, err := parseInsertLiteral(token)
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		}
		return nil, unexpected(token, "',' or ')' in value list")
	}

	if len(columns) != len(values) {
		return nil, syntaxError("column count doesn't match value count")
	}

	command.Values = make(core.Row, len(columns))
	for i, column := range columns {
		if _, ok := command.Values[column]; ok {
			return nil, syntaxError("duplicate column %q", column)
		}
		command.Values[column] = values[i]
	}

	return command, nil
}

func ParseSelect(parser *Parser) (Command, error) {
	var command SelectCommand

	if parser.lexer.PeekToken().Type == Wildcard {
		parser.lexer.NextToken()
	} else {
		for {
			column, err := parser.columnName()
			if err != nil {
				return nil, err
			}
			command.Columns = append(command.Columns, column)

			if parser.lexer.PeekToken().Type != Comma {
				break
			}
			parser.lexer.NextToken()
		}
	}

	if _, err := parser.expect(From, "FROM"); err != nil {
		return nil, err
	}

	table, err := parser.tableName()
	if err != nil {
		return nil, err
	}
	command.Table = table

	if parser.lexer.PeekToken().Type == Join {
		parser.lexer.NextToken()
		join, err := ParseJoin(parser, command.Table)
		if err != nil {
			return nil, err
		}
		command.Join = &join
	}

	where, err := ParseWhere(parser)
	if err != nil {
		return nil, err
	}
	command.Where = where

	return command, nil
}

// ParseJoin parses `table ON a.x = b.y`. When the qualifiers show the
// condition was written with the joined table first, the sides are swapped
// so LeftColumn always belongs to the source table.
func ParseJoin(parser *Parser, source string) (JoinClause, error) {
	var join JoinClause

	table, err := parser.tableName()
	if err != nil {
		return join, err
	}
	join.Table = table

	if _, err := parser.expect(On, "ON after JOIN table"); err != nil {
		return join, err
	}

	leftQualifier, leftColumn, err := parser.columnReference()
	if err != nil {
		return join, err
	}
	if _, err := parser.expect(Equals, "= in JOIN ON condition"); err != nil {
		return join, err
	}
	rightQualifier, rightColumn, err := parser.columnReference()
	if err != nil {
		return join, err
	}

	join.LeftColumn, join.RightColumn = leftColumn, rightColumn
	if source != table && leftQualifier == table && rightQualifier == source {
		join.LeftColumn, join.RightColumn = rightColumn, leftColumn
	}
	return join, nil
}

// ParseWhere parses an optional `WHERE col = value` clause. A missing clause
// yields a nil predicate. Quoted literals stay strings even when they hold
// digits, so `id = '1'` does not match an INTEGER 1.
func ParseWhere(parser *Parser) (core.Predicate, error) {
	if parser.lexer.PeekToken().Type != Where {
		return nil, nil
	}
	parser.lexer.NextToken()

	column, value, err := parseAssignment(parser, "WHERE")
	if err != nil {
		return nil, err
	}
	return core.Predicate{column: value}, nil
}

func ParseUpdate(parser *Parser) (Command, error) {
	var command UpdateCommand

	table, err := parser.tableName()
	if err != nil {
		return nil, err
	}
	command.Table = table

	if _, err := parser.expect(Set, "SET"); err != nil {
		return nil, err
	}

	command.Set = make(core.Row)
	for {
		column, value, err := parseAssignment(parser, "SET")
		if err != nil {
			return nil, err
		}
		if _, ok := command.Set[column]; ok {
			return nil, syntaxError("duplicate column %q in SET", column)
		}
		command.Set[column] = value

		if parser.lexer.PeekToken().Type != Comma {
			break
		}
		parser.lexer.NextToken()
	}

	where, err := ParseWhere(parser)
	if err != nil {
		return nil, err
	}
	command.Where = where

	return command, nil
}

func ParseDelete(parser *Parser) (Command, error) {
	var command DeleteCommand

	table, err := parser.tableName()
	if err != nil {
		return nil, err
	}
	command.Table = table

	where, err := ParseWhere(parser)
	if err != nil {
		return nil, err
	}
	command.Where = where

	return command, nil
}

// parseAssignment parses `col = value` as used by WHERE and SET.
func parseAssignment(parser *Parser, clause string) (string, core.Value, error) {
	column, err := parser.columnName()
	if err != nil {
		return "", nil, err
	}
	if _, err := parser.expect(Equals, "= in "+clause+" clause"); err != nil {
		return "", nil, err
	}
	value, err := parsePredicateLiteral(parser.lexer.NextToken())
	if err != nil {
		return "", nil, err
	}
	return column, value, nil
}

// parseInsertLiteral converts a VALUES literal. Quoted literals are strings
// and NULL is null. Bare literals are tried as integer, boolean and float,
// in that order, and otherwise kept as strings.
func parseInsertLiteral(token Token) (core.Value, error) {
	switch {
	case token.Type == String:
		return token.Value, nil
	case token.Type == Null:
		return nil, nil
	case token.Type != Number && !token.IsWord():
		return nil, unexpected(token, "value")
	}

	raw := token.Value
	if isInteger(raw) {
		return parseInteger(raw)
	}
	switch toUpper(raw) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f, nil
	}
	return raw, nil
}

// parsePredicateLiteral converts a WHERE or SET literal. Only integers are
// recognized; every other bare literal is a string.
func parsePredicateLiteral(token Token) (core.Value, error) {
	switch {
	case token.Type == String:
		return token.Value, nil
	case token.Type == Null:
		return nil, nil
	case token.Type != Number && !token.IsWord():
		return nil, unexpected(token, "value")
	}

	if isInteger(token.Value) {
		return parseInteger(token.Value)
	}
	return token.Value, nil
}

// isInteger reports whether s is a non-empty run of digits. A sign makes
// the literal a float on INSERT and a string elsewhere.
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func parseInteger(s string) (core.Value, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, syntaxError("integer literal %s out of range", s)
	}
	return n, nil
}

func (parser *Parser) expect(tokenType TokenType, what string) (Token, error) {
	token := parser.lexer.NextToken()
	if token.Type != tokenType {
		return token, unexpected(token, what)
	}
	return token, nil
}

func (parser *Parser) tableName() (string, error) {
	token := parser.lexer.NextToken()
	if !token.IsWord() || strings.Contains(token.Value, ".") {
		return "", unexpected(token, "table name")
	}
	return token.Value, nil
}

// columnName reads a possibly qualified column reference and keeps only the
// column part.
func (parser *Parser) columnName() (string, error) {
	_, column, err := parser.columnReference()
	return column, err
}

func (parser *Parser) columnReference() (qualifier, column string, err error) {
	token := parser.lexer.NextToken()
	if !token.IsWord() {
		return "", "", unexpected(token, "column name")
	}
	if i := strings.LastIndexByte(token.Value, '.'); i >= 0 {
		qualifier, column = token.Value[:i], token.Value[i+1:]
	} else {
		column = token.Value
	}
	if column == "" {
		return "", "", syntaxError("invalid column reference %q", token.Value)
	}
	return qualifier, column, nil
}

func syntaxError(format string, args ...any) error {
	return core.Errorf(core.SyntaxError, "syntax error: "+format, args...)
}

func unexpected(token Token, want string) error {
	if token.Type == Unknown {
		if len(token.Value) == 1 {
			return syntaxError("unexpected character %q", token.Value)
		}
		return syntaxError("%s", token.Value)
	}
	return syntaxError("expected %s, got %s", want, token.describe())
}
