package db

import (
	"context"
	"database/sql"
)

// Querier runs statements. *sql.DB reads the committed data, *sql.Tx and *Tx
// also see what the transaction has written.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DBer is a Querier able to open transactions
type DBer interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
