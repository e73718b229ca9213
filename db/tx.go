package db

import (
	"context"
)

// SQLTxer is the part of *sql.Tx wrapped by Tx.
type SQLTxer interface {
	Querier
	Commit() error
	Rollback() error
}

// Tx is a sql transaction that runs callbacks once it has been committed or
// rolled back. The merkle trees use them to keep their caches in step with
// the database.
type Tx struct {
	SQLTxer
	onRollback []func()
	onCommit   []func()
}

func NewTx(ctx context.Context, db DBer) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{SQLTxer: tx}, nil
}

func (t *Tx) AddRollbackCallback(cb func()) { t.onRollback = append(t.onRollback, cb) }

func (t *Tx) AddCommitCallback(cb func()) { t.onCommit = append(t.onCommit, cb) }

func (t *Tx) Commit() error {
	return finish(t.SQLTxer.Commit, t.onCommit)
}

func (t *Tx) Rollback() error {
	return finish(t.SQLTxer.Rollback, t.onRollback)
}

func finish(end func() error, callbacks []func()) error {
	if err := end(); err != nil {
		return err
	}
	for _, cb := range callbacks {
		cb()
	}
	return nil
}
