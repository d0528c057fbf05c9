package sqlite

import "database/sql"

// storeTx wraps a Store whose queryer is an *sql.Tx, adding Commit/Rollback.
type storeTx struct {
	Store

	tx *sql.Tx
}

func (t *storeTx) Commit() error   { return t.tx.Commit() }
func (t *storeTx) Rollback() error { return t.tx.Rollback() }

// ApplyMigrations must run outside a transaction.
func (t *storeTx) ApplyMigrations() error {
	panic("sqlite: ApplyMigrations called inside a transaction")
}
