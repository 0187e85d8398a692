// Package op provides the table and index manager for SnapDB.
//
// The op package sits between the engine (db/) and the persistence layer
// (ps/). It owns table schemas, row storage and the unique indexes that
// enforce primary-key and UNIQUE constraints.
//
// # Database
//
// Database owns the tables of one instance:
//
//	database := op.NewDatabase()
//	table, err := database.CreateTable("users", columns)
//	table, err = database.Table("users")       // NotFound if missing
//	database.DropTable("users")
//	snapshot := database.Snapshot()            // persisted form
//	err = database.Restore(snapshot)           // rebuilds indexes
//
// # Table
//
// Rows live in an ordered slice and are addressed by position. Scans
// return positions so updates and deletes act on the stored rows:
//
//	err := table.Insert(core.Row{"id": int64(1), "name": "Alice"})
//	for position, row := range table.Scan(core.Predicate{"name": "Alice"}) {
//	    // process matching rows
//	}
//	positions := table.Positions(predicate)
//	updated, err := table.Update(positions, core.Row{"name": "Bob"})
//	deleted := table.Delete(positions)
//
// # Indexes
//
// The primary-key index and each UNIQUE column index map a non-null value
// to its row position. Insert appends to them; Update, Delete and snapshot
// import rebuild them in full by scanning the rows in order.
//
// # Architecture
//
// The layering is:
//
//	Statement Parser (sql/)
//	     ↓
//	Engine (db/)
//	     ↓
//	Tables (op/)     ← This package
//	     ↓
//	Persistence (ps/)
//	     ↓
//	Snapshot file + git history (go-billy, go-git)
package op
