package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/op"
	"github.com/nickyhof/SnapDB/ps"
	"github.com/nickyhof/SnapDB/sql"
)

// Engine executes statements against a Database and saves a snapshot after
// every batch that changed it. An Engine is not safe for concurrent use;
// callers sharing one must serialize access.
type Engine struct {
	Database    *op.Database
	Persistence *ps.Persistence // nil disables saving
	QueryContext
}

type QueryContext struct {
	Identity core.Identity
}

func NewEngine(database *op.Database, persistence *ps.Persistence, identity core.Identity) *Engine {
	return &Engine{
		Database:     database,
		Persistence:  persistence,
		QueryContext: QueryContext{Identity: identity},
	}
}

// Execute parses and runs a single statement.
func (engine *Engine) Execute(query string) (Result, error) {
	command, err := sql.Parse(query)
	if err != nil {
		return nil, err
	}

	result, err := engine.ExecuteCommand(command)
	if err != nil {
		return nil, err
	}

	if sql.Mutating(command) {
		engine.autosave()
	}
	return result, nil
}

// ExecuteBatch runs every ;-separated statement of text in order. A failing
// statement yields an ErrorResult and does not stop the batch. Nothing is
// rolled back.
func (engine *Engine) ExecuteBatch(text string) Batch {
	statements := sql.SplitStatements(text)
	if len(statements) == 0 {
		_, err := sql.Parse(text)
		return Batch{ErrorResult{Err: err}}
	}

	batch := make(Batch, 0, len(statements))
	mutated := false
	for _, statement := range statements {
		command, err := sql.Parse(statement)
		if err != nil {
			batch = append(batch, ErrorResult{Err: err})
			continue
		}

		result, err := engine.ExecuteCommand(command)
		if err != nil {
			batch = append(batch, ErrorResult{Err: err})
			continue
		}

		mutated = mutated || sql.Mutating(command)
		batch = append(batch, result)
	}

	if mutated {
		engine.autosave()
	}
	return batch
}

func (engine *Engine) ExecuteCommand(command sql.Command) (Result, error) {
	switch command := command.(type) {
	case sql.CreateTableCommand:
		return engine.executeCreateTable(command)
	case sql.InsertCommand:
		return engine.executeInsert(command)
	case sql.SelectCommand:
		return engine.executeSelect(command)
	case sql.UpdateCommand:
		return engine.executeUpdate(command)
	case sql.DeleteCommand:
		return engine.executeDelete(command)
	default:
		return nil, core.Errorf(core.SyntaxError, "unsupported command %T", command)
	}
}

func (engine *Engine) executeCreateTable(command sql.CreateTableCommand) (Result, error) {
	startTime := time.Now()

	if _, err := engine.Database.CreateTable(command.Table, command.Columns); err != nil {
		return nil, err
	}

	return CommitResult{
		Message:          fmt.Sprintf("Table '%s' created.", command.Table),
		TablesCreated:    1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeInsert(command sql.InsertCommand) (Result, error) {
	startTime := time.Now()

	table, err := engine.Database.Table(command.Table)
	if err != nil {
		return nil, err
	}

	if err := table.Insert(command.Values); err != nil {
		return nil, err
	}

	return CommitResult{
		Message:          "Row inserted.",
		RowsInserted:     1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeUpdate(command sql.UpdateCommand) (Result, error) {
	startTime := time.Now()

	table, err := engine.Database.Table(command.Table)
	if err != nil {
		return nil, err
	}

	updated, err := table.Update(table.Positions(command.Where), command.Set)
	if err != nil {
		return nil, err
	}

	return CommitResult{
		Message:          fmt.Sprintf("%d row(s) updated.", updated),
		RowsUpdated:      updated,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeDelete(command sql.DeleteCommand) (Result, error) {
	startTime := time.Now()

	table, err := engine.Database.Table(command.Table)
	if err != nil {
		return nil, err
	}

	deleted := table.Delete(table.Positions(command.Where))

	return CommitResult{
		Message:          fmt.Sprintf("%d row(s) deleted.", deleted),
		RowsDeleted:      deleted,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

// DropTable removes a table and saves.
func (engine *Engine) DropTable(name string) (Result, error) {
	startTime := time.Now()

	if err := engine.Database.DropTable(name); err != nil {
		return nil, err
	}
	engine.autosave()

	return CommitResult{
		Message:          fmt.Sprintf("Table '%s' dropped.", name),
		TablesDeleted:    1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

// TableInfo describes one table for schema listings.
type TableInfo struct {
	Name    string        `json:"name"`
	Columns []core.Column `json:"columns"`
}

// Tables lists every table with its columns, sorted by name.
func (engine *Engine) Tables() []TableInfo {
	names := engine.Database.TableNames()
	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		table, err := engine.Database.Table(name)
		if err != nil {
			continue
		}
		tables = append(tables, TableInfo{Name: name, Columns: table.Columns})
	}
	return tables
}

// Save writes the current snapshot.
func (engine *Engine) Save() (ps.Transaction, error) {
	if engine.Persistence == nil {
		return ps.Transaction{}, nil
	}
	return engine.Persistence.Save(engine.Database.Snapshot(), engine.Identity)
}

func (engine *Engine) autosave() {
	if _, err := engine.Save(); err != nil {
		log.Printf("Failed to save database: %v", err)
	}
}

// Load restores the tables stored in the snapshot. Tables that fail to load
// are reported in the error; everything else stays available.
func (engine *Engine) Load() error {
	if engine.Persistence == nil {
		return nil
	}
	snapshot, err := engine.Persistence.Load()
	if err != nil {
		return err
	}
	return engine.Database.Restore(snapshot)
}

// Checkout replaces the database with the snapshot committed by the given
// transaction and saves the result as a new commit.
func (engine *Engine) Checkout(id string) (ps.Transaction, error) {
	if engine.Persistence == nil {
		return ps.Transaction{}, ps.ErrNoHistory
	}
	snapshot, err := engine.Persistence.LoadAt(id)
	if err != nil {
		return ps.Transaction{}, err
	}
	if err := engine.replace(snapshot); err != nil {
		return ps.Transaction{}, err
	}
	return engine.Save()
}

// Backup exports the current snapshot to url.
func (engine *Engine) Backup(ctx context.Context, url string, cfg *ps.S3Config) error {
	return ps.ExportSnapshot(ctx, engine.Database.Snapshot(), url, cfg)
}

// RestoreFrom replaces the database with the snapshot stored at url and
// saves it.
func (engine *Engine) RestoreFrom(ctx context.Context, url string, cfg *ps.S3Config) error {
	snapshot, err := ps.ImportSnapshot(ctx, url, cfg)
	if err != nil {
		return err
	}
	if err := engine.replace(snapshot); err != nil {
		return err
	}
	_, err = engine.Save()
	return err
}

// replace swaps in the tables of snapshot. The current tables are kept if
// any table of the snapshot cannot be loaded.
func (engine *Engine) replace(snapshot core.Snapshot) error {
	staged := op.NewDatabase()
	if err := staged.Restore(snapshot); err != nil {
		return err
	}
	*engine.Database = *staged
	return nil
}
