package ps

import (
	"testing"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
)

func TestPlumbingCommitSnapshot(t *testing.T) {
	p, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	data := []byte(`{"tables": {}}`)
	txn, err := p.commitSnapshot(data, identity, "first")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}
	if txn.Id == "" {
		t.Error("Transaction ID should not be empty")
	}
	if txn.Author != "test <test@test.com>" {
		t.Errorf("Unexpected author: %s", txn.Author)
	}

	content, err := p.snapshotAt(plumbing.NewHash(txn.Id))
	if err != nil {
		t.Fatalf("snapshotAt failed: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Test Failed: Expected %+v, got %+v", string(data), string(content))
	}
}

func TestPlumbingUnchangedSnapshot(t *testing.T) {
	p, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	data := []byte(`{"tables": {}}`)
	first, err := p.commitSnapshot(data, identity, "first")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}
	second, err := p.commitSnapshot(data, identity, "second")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}

	if first.Id != second.Id {
		t.Errorf("Expected identical snapshot to reuse %s, got %s", first.Id, second.Id)
	}
}

func TestPlumbingParentChain(t *testing.T) {
	p, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	first, err := p.commitSnapshot([]byte("one"), identity, "one")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}
	second, err := p.commitSnapshot([]byte("two"), identity, "two")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}

	commit, err := p.repo.CommitObject(plumbing.NewHash(second.Id))
	if err != nil {
		t.Fatalf("Failed to read commit: %v", err)
	}
	if len(commit.ParentHashes) != 1 || commit.ParentHashes[0].String() != first.Id {
		t.Errorf("Expected parent %s, got %v", first.Id, commit.ParentHashes)
	}

	old, err := p.snapshotAt(plumbing.NewHash(first.Id))
	if err != nil || string(old) != "one" {
		t.Errorf("Expected first snapshot to stay readable, got %q (%v)", old, err)
	}
}

func TestPlumbingSnapshotTree(t *testing.T) {
	p, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	txn, err := p.commitSnapshot([]byte("{}"), identity, "tree")
	if err != nil {
		t.Fatalf("commitSnapshot failed: %v", err)
	}

	commit, err := p.repo.CommitObject(plumbing.NewHash(txn.Id))
	if err != nil {
		t.Fatalf("Failed to read commit: %v", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		t.Fatalf("Failed to read tree: %v", err)
	}

	if len(tree.Entries) != 1 {
		t.Fatalf("Expected a single tree entry, got %v", tree.Entries)
	}
	entry := tree.Entries[0]
	if entry.Name != SnapshotFile || entry.Mode != filemode.Regular {
		t.Errorf("Test Failed: Expected %+v, got %+v", SnapshotFile, entry)
	}
}

func TestPlumbingSnapshotAtUnknownCommit(t *testing.T) {
	p, err := NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	if _, err := p.snapshotAt(plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")); err == nil {
		t.Error("Expected error for an unknown commit")
	}
}
