package ps

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
	"github.com/nickyhof/SnapDB/core"
)

// SnapshotFile is the name of the snapshot document, both on disk and in
// the history repository.
const SnapshotFile = "db.json"

var ErrNoHistory = errors.New("snapshot history is not enabled")

// Persistence stores the database snapshot as one JSON document. When
// history is enabled every save is also committed to a git repository kept
// next to the document.
type Persistence struct {
	fs   billy.Filesystem
	repo *git.Repository
	mu   sync.Mutex
}

// NewMemoryPersistence keeps the snapshot and its history in memory.
func NewMemoryPersistence() (*Persistence, error) {
	wt := memfs.New()
	storer := memory.NewStorage()

	repo, err := git.Init(storer, git.WithWorkTree(wt))
	if err != nil {
		return nil, err
	}

	return &Persistence{
		fs:   wt,
		repo: repo,
	}, nil
}

// NewFilePersistence stores the snapshot at baseDir/db.json. With history
// the git repository lives in baseDir/.git and is opened if it exists.
func NewFilePersistence(baseDir string, history bool) (*Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	persistence := &Persistence{fs: wt}
	if !history {
		return persistence, nil
	}

	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history repository: %w", err)
	}

	persistence.repo = repo
	return persistence, nil
}

// Path returns the location of the snapshot document.
func (p *Persistence) Path() string {
	return p.fs.Join(p.fs.Root(), SnapshotFile)
}

func (p *Persistence) HasHistory() bool {
	return p != nil && p.repo != nil
}

// Save writes the snapshot, replacing the previous document atomically, and
// commits it when history is enabled. Saving an unchanged snapshot does not
// create a new commit.
func (p *Persistence) Save(snapshot core.Snapshot, identity core.Identity) (Transaction, error) {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return Transaction{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp := SnapshotFile + ".tmp"
	if err := util.WriteFile(p.fs, tmp, data, 0644); err != nil {
		return Transaction{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := p.fs.Rename(tmp, SnapshotFile); err != nil {
		p.fs.Remove(tmp)
		return Transaction{}, fmt.Errorf("failed to replace snapshot: %w", err)
	}

	if p.repo == nil {
		return Transaction{}, nil
	}
	return p.commitSnapshot(data, identity, "Saving snapshot")
}

// Load reads the snapshot document. A missing document is an empty
// snapshot.
func (p *Persistence) Load() (core.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := util.ReadFile(p.fs, SnapshotFile)
	if errors.Is(err, os.ErrNotExist) {
		return core.Snapshot{Tables: map[string]core.TableSnapshot{}}, nil
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return DecodeSnapshot(data)
}
