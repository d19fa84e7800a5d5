package letterpress

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eringen/letterpress/newsletter"
)

type txKey struct{}

// executor returns the transaction carried by ctx, or the pool.
func (s *Store) executor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// runInTx runs fn inside a transaction. Nested calls join the outer
// transaction and leave commit or rollback to it.
func (s *Store) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &newsletter.PersistenceError{Op: "begin transaction", Err: err}
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &newsletter.PersistenceError{
				Op:  "rollback transaction",
				Err: fmt.Errorf("%w (after: %v)", rbErr, err),
			}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &newsletter.PersistenceError{Op: "commit transaction", Err: err}
	}
	return nil
}
