// Package sql provides statement lexing and parsing for SnapDB.
//
// The package includes a lexer that tokenizes statement text and a
// recursive-descent parser that produces Command values for the engine.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users")
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %s\n", token)
//	}
//
// # Parser Usage
//
//	command, err := sql.Parse("SELECT name FROM users WHERE id = 1;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Batches are split with SplitStatements before parsing:
//
//	for _, statement := range sql.SplitStatements(batch) {
//	    command, err := sql.Parse(statement)
//	    ...
//	}
//
// # Supported Statements
//
//	CREATE TABLE t (col type [PRIMARY KEY] [UNIQUE] [NOT NULL], ...)
//	INSERT INTO t (c1, ...) VALUES (v1, ...)
//	SELECT cols|* FROM t [JOIN t2 ON t.a = t2.b] [WHERE col = val]
//	UPDATE t SET col = val [, col = val] [WHERE col = val]
//	DELETE FROM t [WHERE col = val]
//
// Keywords are case-insensitive. Column types are INT/INTEGER, TEXT/STRING,
// FLOAT and BOOL. Predicates are single-column equality tests only.
package sql
