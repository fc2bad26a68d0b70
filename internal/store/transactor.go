// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// beginner is the subset of *pgxpool.Pool needed to open transactions.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transactor runs functions inside a single database transaction. The open
// transaction travels in the context, so repository calls made by fn join it
// through FromContext without knowing a transaction exists.
type Transactor struct {
	pool beginner
}

// NewTransactor creates a Transactor backed by the pool.
func NewTransactor(pool beginner) *Transactor {
	return &Transactor{pool: pool}
}

// InTransaction runs fn inside a transaction, committing on success and
// rolling back on any error or panic. A call made while a transaction is
// already in the context joins it instead of nesting.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return oops.Code("TX_ROLLBACK_FAILED").Wrap(rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}
