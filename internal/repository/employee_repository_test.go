package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/database"
)

func TestEmployeeRepository(t *testing.T) {
	repo := NewEmployeeRepository(database.TestTx(t))
	ctx := context.Background()

	t.Run("returns ErrEmployeeNotFound for unknown account", func(t *testing.T) {
		_, err := repo.GetByTelegramID(ctx, 999)
		require.ErrorIs(t, err, ErrEmployeeNotFound)
	})

	t.Run("links and relinks an account", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, 111, " a@a "))

		emp, err := repo.GetByTelegramID(ctx, 111)
		require.NoError(t, err)
		require.Equal(t, "a@a", emp.Email)

		require.NoError(t, repo.Upsert(ctx, 111, "b@b"))

		emp, err = repo.GetByTelegramID(ctx, 111)
		require.NoError(t, err)
		require.Equal(t, "b@b", emp.Email)
	})

	t.Run("deletes a link", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, 222, "c@c"))
		require.NoError(t, repo.Delete(ctx, 222))

		_, err := repo.GetByTelegramID(ctx, 222)
		require.ErrorIs(t, err, ErrEmployeeNotFound)
	})
}
