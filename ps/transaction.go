package ps

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/nickyhof/SnapDB/core"
)

// Transaction is one committed snapshot in the history.
type Transaction struct {
	Id      string
	When    time.Time
	Author  string // "Name <email>" format
	Message string
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

// ShortId returns the abbreviated commit id.
func (transaction Transaction) ShortId() string {
	if len(transaction.Id) > 8 {
		return transaction.Id[:8]
	}
	return transaction.Id
}

func transactionOf(c *object.Commit) Transaction {
	author := ""
	if c.Author.Name != "" || c.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email)
	}
	return Transaction{
		Id:      c.Hash.String(),
		When:    c.Committer.When,
		Author:  author,
		Message: c.Message,
	}
}

func (p *Persistence) latestTransaction() Transaction {
	headRef, err := p.repo.Head()
	if err != nil || headRef == nil {
		return Transaction{}
	}

	commit, err := p.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}

	return transactionOf(commit)
}

// LatestTransaction returns the most recent snapshot commit, or the zero
// Transaction when nothing has been committed.
func (p *Persistence) LatestTransaction() Transaction {
	if !p.HasHistory() {
		return Transaction{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latestTransaction()
}

// History lists the snapshot commits, newest first.
func (p *Persistence) History() ([]Transaction, error) {
	if !p.HasHistory() {
		return nil, ErrNoHistory
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}

	cIter, err := p.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var transactions []Transaction
	err = cIter.ForEach(func(c *object.Commit) error {
		transactions = append(transactions, transactionOf(c))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// LoadAt reads the snapshot committed by the given transaction. The id may
// be abbreviated.
func (p *Persistence) LoadAt(id string) (core.Snapshot, error) {
	if !p.HasHistory() {
		return core.Snapshot{}, ErrNoHistory
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hash, err := p.repo.ResolveRevision(plumbing.Revision(id))
	if err != nil {
		return core.Snapshot{}, core.Errorf(core.NotFoundError, "transaction %s not found", id)
	}

	data, err := p.snapshotAt(*hash)
	if err != nil {
		return core.Snapshot{}, err
	}

	return DecodeSnapshot(data)
}
