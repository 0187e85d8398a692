package sql

import (
	"reflect"
	"testing"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []Token
	}{
		{
			"select",
			"SELECT * FROM users WHERE id = 1",
			[]Token{
				{Type: Select, Value: "SELECT"},
				{Type: Wildcard, Value: "*"},
				{Type: From, Value: "FROM"},
				{Type: Identifier, Value: "users"},
				{Type: Where, Value: "WHERE"},
				{Type: Identifier, Value: "id"},
				{Type: Equals, Value: "="},
				{Type: Number, Value: "1"},
				{Type: EOF},
			},
		},
		{
			"keywords are case-insensitive",
			"create Table t (id int primary key not null)",
			[]Token{
				{Type: Create, Value: "create"},
				{Type: TableKeyword, Value: "Table"},
				{Type: Identifier, Value: "t"},
				{Type: ParenOpen, Value: "("},
				{Type: Identifier, Value: "id"},
				{Type: Identifier, Value: "int"},
				{Type: Primary, Value: "primary"},
				{Type: Key, Value: "key"},
				{Type: Not, Value: "not"},
				{Type: Null, Value: "null"},
				{Type: ParenClose, Value: ")"},
				{Type: EOF},
			},
		},
		{
			"qualified names and strings",
			`users.id = "Bob" , 'it''s'`,
			[]Token{
				{Type: Identifier, Value: "users.id"},
				{Type: Equals, Value: "="},
				{Type: String, Value: "Bob"},
				{Type: Comma, Value: ","},
				{Type: String, Value: "it's"},
				{Type: EOF},
			},
		},
		{
			"numbers",
			"-7 2.5 1e-3 .5",
			[]Token{
				{Type: Number, Value: "-7"},
				{Type: Number, Value: "2.5"},
				{Type: Number, Value: "1e-3"},
				{Type: Number, Value: ".5"},
				{Type: EOF},
			},
		},
		{
			"unknown character stops",
			"a > 1",
			[]Token{
				{Type: Identifier, Value: "a"},
				{Type: Unknown, Value: ">"},
			},
		},
		{
			"unterminated string",
			"'abc",
			[]Token{
				{Type: Unknown, Value: "unterminated string"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := tokenize(test.sql)
			if !reflect.DeepEqual(actual, test.expected) {
				t.Errorf("Test Failed: Expected %v, got %v", test.expected, actual)
			}
		})
	}
}

func TestLexerPeekToken(t *testing.T) {
	lexer := NewLexer("SELECT name")

	if token := lexer.PeekToken(); token.Type != Select {
		t.Fatalf("expected SELECT from peek, got %v", token)
	}
	if token := lexer.NextToken(); token.Type != Select {
		t.Fatalf("peek consumed input, got %v", token)
	}
	if token := lexer.NextToken(); token.Type != Identifier || token.Value != "name" {
		t.Fatalf("expected name, got %v", token)
	}
	if token := lexer.NextToken(); token.Type != EOF {
		t.Fatalf("expected EOF, got %v", token)
	}
}
