package ps

import (
	"fmt"
	"io"
	"time"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/nickyhof/SnapDB/core"
)

// commitSnapshot records data as the next snapshot commit on the current
// branch. The object store is written directly; Save has already put the
// same bytes in the worktree. When the resulting tree equals HEAD's tree no
// commit is made and HEAD's transaction is returned.
func (p *Persistence) commitSnapshot(data []byte, identity core.Identity, message string) (Transaction, error) {
	treeHash, err := p.storeSnapshotTree(data)
	if err != nil {
		return Transaction{}, err
	}

	branch := plumbing.Master
	var parents []plumbing.Hash
	if head, err := p.repo.Head(); err == nil {
		parent, err := p.repo.CommitObject(head.Hash())
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to read head commit: %w", err)
		}
		if parent.TreeHash == treeHash {
			return transactionOf(parent), nil
		}
		parents = append(parents, parent.Hash)
		if head.Name().IsBranch() {
			branch = head.Name()
		}
	}

	signature := object.Signature{Name: identity.Name, Email: identity.Email, When: time.Now()}
	commit := &object.Commit{
		Author:       signature,
		Committer:    signature,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}

	commit.Hash, err = p.storeObject(commit)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store commit: %w", err)
	}
	if err := p.repo.Storer.SetReference(plumbing.NewHashReference(branch, commit.Hash)); err != nil {
		return Transaction{}, fmt.Errorf("failed to move %s: %w", branch.Short(), err)
	}

	return transactionOf(commit), nil
}

// storeSnapshotTree writes data as a blob and returns the hash of a root
// tree whose only entry is SnapshotFile.
func (p *Persistence) storeSnapshotTree(data []byte) (plumbing.Hash, error) {
	blob := p.repo.Storer.NewEncodedObject()
	blob.SetType(plumbing.BlobObject)
	blob.SetSize(int64(len(data)))

	writer, err := blob.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to open blob: %w", err)
	}
	_, err = writer.Write(data)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob: %w", err)
	}

	blobHash, err := p.repo.Storer.SetEncodedObject(blob)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}

	tree := &object.Tree{Entries: []object.TreeEntry{
		{Name: SnapshotFile, Mode: filemode.Regular, Hash: blobHash},
	}}
	treeHash, err := p.storeObject(tree)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return treeHash, nil
}

type encoder interface {
	Encode(plumbing.EncodedObject) error
}

func (p *Persistence) storeObject(value encoder) (plumbing.Hash, error) {
	obj := p.repo.Storer.NewEncodedObject()
	if err := value.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return p.repo.Storer.SetEncodedObject(obj)
}

// snapshotAt returns the snapshot document recorded by a commit.
func (p *Persistence) snapshotAt(commitHash plumbing.Hash) ([]byte, error) {
	commit, err := p.repo.CommitObject(commitHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	entry, err := tree.FindEntry(SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("commit %s has no %s: %w", commitHash, SnapshotFile, err)
	}

	blob, err := p.repo.BlobObject(entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
