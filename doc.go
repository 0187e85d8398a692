// Package SnapDB provides a small embedded relational database.
//
// Tables live in memory with primary key and unique indexes. After every
// statement that changes data the whole database is written as one JSON
// snapshot, optionally committed to a Git history so earlier states can be
// listed and checked out again.
//
// # Quick Start
//
// Create an in-memory database:
//
//	persistence, _ := ps.NewMemoryPersistence()
//	db := SnapDB.Open(persistence)
//	engine := db.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	engine.Execute("CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
//	engine.Execute("INSERT INTO users (id, name) VALUES (1, 'Alice')")
//
//	result, _ := engine.Execute("SELECT * FROM users")
//	result.Display(os.Stdout)
//
// # Supported SQL
//
// SnapDB supports a deliberately small dialect:
//   - CREATE TABLE with INT, TEXT, FLOAT and BOOL columns
//   - PRIMARY KEY, UNIQUE and NOT NULL column flags
//   - INSERT INTO ... VALUES
//   - SELECT with one optional inner JOIN and a single equality WHERE
//   - UPDATE ... SET and DELETE FROM with the same WHERE form
package SnapDB
