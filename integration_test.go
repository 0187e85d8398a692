package SnapDB

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/db"
	"github.com/nickyhof/SnapDB/ps"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

// TestFunc is the signature for test functions that work with any persistence
type TestFunc func(t *testing.T, engine *db.Engine)

// runWithBothPersistence runs a test function with both memory and file persistence
func runWithBothPersistence(t *testing.T, testFunc TestFunc) {
	t.Run("Memory", func(t *testing.T) {
		persistence, err := ps.NewMemoryPersistence()
		if err != nil {
			t.Fatalf("Failed to initialize memory persistence: %v", err)
		}
		DB := Open(persistence)
		testFunc(t, DB.Engine(testIdentity))
	})

	t.Run("File", func(t *testing.T) {
		persistence, err := ps.NewFilePersistence(t.TempDir(), true)
		if err != nil {
			t.Fatalf("Failed to initialize file persistence: %v", err)
		}
		DB := Open(persistence)
		testFunc(t, DB.Engine(testIdentity))
	})
}

// TestIntegrationWorkflow tests a complete database workflow
func TestIntegrationWorkflow(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, engine *db.Engine) {
		result, err := engine.Execute("CREATE TABLE employees (id INT PRIMARY KEY, name STRING, department STRING, email TEXT UNIQUE, salary FLOAT, active BOOL)")
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
		if result.(db.CommitResult).TablesCreated != 1 {
			t.Error("Expected 1 table created")
		}

		batch := engine.ExecuteBatch(`
			INSERT INTO employees (id, name, department, email, salary, active) VALUES (1, 'Alice', 'Engineering', 'alice@example.com', 100000.5, true);
			INSERT INTO employees (id, name, department, email, salary, active) VALUES (2, 'Bob', 'Sales', 'bob@example.com', 75000.0, false);
			INSERT INTO employees (id, name, department, email) VALUES (3, 'Charlie', 'Engineering', 'charlie@example.com');
		`)
		if err := batch.Err(); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}

		result, err = engine.Execute("SELECT name FROM employees WHERE department = 'Engineering'")
		if err != nil {
			t.Fatalf("Failed to select: %v", err)
		}
		expected := []core.Row{{"name": "Alice"}, {"name": "Charlie"}}
		if rows := result.(db.QueryResult).Rows; !reflect.DeepEqual(rows, expected) {
			t.Errorf("Test Failed: Expected %+v, got %+v", expected, rows)
		}

		_, err = engine.Execute("INSERT INTO employees (id, name, email) VALUES (4, 'Dave', 'bob@example.com')")
		if !errors.Is(err, core.ErrConstraint) {
			t.Errorf("Expected unique violation, got %v", err)
		}

		result, err = engine.Execute("UPDATE employees SET department = 'Sales', salary = 90000.0 WHERE id = 3")
		if err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		if result.(db.CommitResult).RowsUpdated != 1 {
			t.Error("Expected 1 row updated")
		}

		result, err = engine.Execute("DELETE FROM employees WHERE department = 'Sales'")
		if err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if result.(db.CommitResult).RowsDeleted != 2 {
			t.Errorf("Expected 2 rows deleted, got %d", result.(db.CommitResult).RowsDeleted)
		}

		result, err = engine.Execute("SELECT * FROM employees")
		if err != nil {
			t.Fatalf("Failed to select: %v", err)
		}
		rows := result.(db.QueryResult).Rows
		if len(rows) != 1 || rows[0]["salary"] != 100000.5 || rows[0]["active"] != true {
			t.Errorf("Unexpected rows after delete: %v", rows)
		}
	})
}

// TestIntegrationReopen checks that tables, rows and indexes survive a
// restart on file persistence.
func TestIntegrationReopen(t *testing.T) {
	dir := t.TempDir()

	persistence, err := ps.NewFilePersistence(dir, false)
	if err != nil {
		t.Fatalf("Failed to initialize file persistence: %v", err)
	}
	engine := Open(persistence).Engine(testIdentity)

	batch := engine.ExecuteBatch(`
		CREATE TABLE users (id INT PRIMARY KEY, name TEXT, score FLOAT);
		CREATE TABLE orders (order_id INT PRIMARY KEY, user_id INT, item TEXT);
		INSERT INTO users (id, name, score) VALUES (1, 'Alice', 2.0);
		INSERT INTO users (id, name, score) VALUES (2, 'Bob', 3.5);
		INSERT INTO orders (order_id, user_id, item) VALUES (10, 2, 'Lamp');
		DELETE FROM users WHERE id = 1;
	`)
	if err := batch.Err(); err != nil {
		t.Fatalf("Failed to run batch: %v", err)
	}

	reopened, err := ps.NewFilePersistence(dir, false)
	if err != nil {
		t.Fatalf("Failed to reopen file persistence: %v", err)
	}
	engine = Open(reopened).Engine(testIdentity)

	result, err := engine.Execute("SELECT name, item FROM users JOIN orders ON users.id = orders.user_id")
	if err != nil {
		t.Fatalf("Failed to select: %v", err)
	}
	expected := []core.Row{{"name": "Bob", "item": "Lamp"}}
	if rows := result.(db.QueryResult).Rows; !reflect.DeepEqual(rows, expected) {
		t.Errorf("Test Failed: Expected %+v, got %+v", expected, rows)
	}

	// the float survives as a float, not an integer
	result, err = engine.Execute("SELECT score FROM users")
	if err != nil {
		t.Fatalf("Failed to select: %v", err)
	}
	if score := result.(db.QueryResult).Rows[0]["score"]; score != 3.5 {
		t.Errorf("Expected score 3.5, got %v (%T)", score, score)
	}

	if _, err := engine.Execute("INSERT INTO users (id, name) VALUES (2, 'Again')"); !errors.Is(err, core.ErrConstraint) {
		t.Errorf("Expected duplicate primary key after reload, got %v", err)
	}
	if _, err := engine.Execute("INSERT INTO users (id, name) VALUES (1, 'Alice')"); err != nil {
		t.Errorf("Expected deleted key to be free after reload, got %v", err)
	}
}

func TestIntegrationSharedEngines(t *testing.T) {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to initialize memory persistence: %v", err)
	}
	DB := Open(persistence)

	writer := DB.Engine(core.Identity{Name: "writer", Email: "writer@test.com"})
	reader := DB.Engine(core.Identity{Name: "reader", Email: "reader@test.com"})

	if _, err := writer.Execute("CREATE TABLE t (a INT)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := reader.Execute("SELECT * FROM t"); err != nil {
		t.Errorf("Expected table to be visible to every engine, got %v", err)
	}

	history, err := persistence.History()
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(history) == 0 || history[0].Author != "writer <writer@test.com>" {
		t.Errorf("Expected commit authored by writer, got %+v", history)
	}
}

func TestIntegrationErrorHandling(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, engine *db.Engine) {
		tests := []struct {
			query string
			err   error
		}{
			{"SELECT * FROM nonexistent", core.ErrNotFound},
			{"CREATE TABLE t (a BLOB)", core.ErrSyntax},
			{"INSERT INTO t (a, b) VALUES (1)", core.ErrSyntax},
			{"DROP TABLE t", core.ErrSyntax},
		}

		for _, tt := range tests {
			_, err := engine.Execute(tt.query)
			if !errors.Is(err, tt.err) {
				t.Errorf("%s: Test Failed: Expected %+v, got %+v", tt.query, tt.err, err)
			}
		}
	})
}
