// Package ps provides the persistence layer for SnapDB.
//
// The whole database is stored as one JSON snapshot document, db.json,
// on a go-billy filesystem. Writes go to a temporary file that is renamed
// over the previous snapshot. With history enabled every save is also
// committed to a git repository using go-git, so older snapshots can be
// listed and restored.
//
// # Memory Persistence
//
// For testing or ephemeral databases:
//
//	persistence, err := ps.NewMemoryPersistence()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Persistence
//
// For persistent storage, with or without history:
//
//	persistence, err := ps.NewFilePersistence("/path/to/data", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Snapshots
//
//	txn, err := persistence.Save(database.Snapshot(), identity)
//	snapshot, err := persistence.Load()   // empty if db.json is missing
//
// # History
//
//	transactions, _ := persistence.History()       // newest first
//	snapshot, err := persistence.LoadAt(txn.Id)     // abbreviated ids work
//
// # Remote Backups
//
// Snapshots can be copied to and from S3, local paths and (read-only) HTTP:
//
//	err := ps.ExportSnapshot(ctx, snapshot, "s3://bucket/db.json", nil)
//	snapshot, err := ps.ImportSnapshot(ctx, "https://example.com/db.json", nil)
package ps
