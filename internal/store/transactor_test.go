// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_InTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectExec("INSERT INTO tags").
			WithArgs("01TAG", "go").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()

		tx := NewTransactor(mockPool)
		err = tx.InTransaction(context.Background(), func(ctx context.Context) error {
			q := FromContext(ctx, mockPool)
			_, err := q.Exec(ctx, "INSERT INTO tags (id, label) VALUES ($1, $2)", "01TAG", "go")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectRollback()

		tx := NewTransactor(mockPool)
		boom := errors.New("boom")
		err = tx.InTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		// only one Begin/Commit pair for the nested case
		mockPool.ExpectBegin()
		mockPool.ExpectCommit()

		tx := NewTransactor(mockPool)
		err = tx.InTransaction(context.Background(), func(ctx context.Context) error {
			return tx.InTransaction(ctx, func(ctx context.Context) error {
				return nil
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("begin failure surfaces with code", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		tx := NewTransactor(mockPool)
		err = tx.InTransaction(context.Background(), func(ctx context.Context) error {
			t.Fatal("fn must not run when begin fails")
			return nil
		})
		assert.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	// without a transaction in the context the fallback is returned
	q := FromContext(context.Background(), mockPool)
	assert.Equal(t, Querier(mockPool), q)
}
