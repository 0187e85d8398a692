// Package db provides the statement execution engine for SnapDB.
//
// The Engine type is the main entry point for executing statements. It
// parses statements, runs them against an op.Database and saves a snapshot
// through ps.Persistence after every change.
//
// # Engine Usage
//
//	engine := db.NewEngine(op.NewDatabase(), persistence, identity)
//	result, err := engine.Execute("SELECT * FROM users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display(os.Stdout)
//
// # Batches
//
// ExecuteBatch runs ;-separated statements one after another. It never
// returns an error: a failing statement becomes an ErrorResult whose value
// starts with "Error:", and the remaining statements still run.
//
//	batch := engine.ExecuteBatch("INSERT INTO t (a) VALUES (1); SELECT * FROM t")
//	value := batch.Value() // single value, or a list for several statements
//
// # Result Types
//
// There are three result types:
//   - QueryResult: Returned by SELECT statements
//   - CommitResult: Returned by CREATE TABLE, INSERT, UPDATE, DELETE and drops
//   - ErrorResult: A failed statement inside a Batch
//
// QueryResult holds the columns and rows; its JSON form is a list of
// objects with keys in column order. CommitResult holds a status message
// such as "Row inserted." together with counts of affected objects.
package db
