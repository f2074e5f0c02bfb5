package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	t.Run("undefined table", func(t *testing.T) {
		err := translateError("jobs", &pq.Error{Code: "42P01", Message: `relation "jobs" does not exist`})
		assert.ErrorIs(t, err, ErrTableNotFound)
		assert.True(t, IsMissingTable(err))
		assert.Contains(t, err.Error(), `"jobs"`)
	})

	t.Run("unique violation", func(t *testing.T) {
		err := translateError("applications", &pq.Error{Code: "23505", Message: "duplicate key value"})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.False(t, IsMissingTable(err))
	})

	t.Run("other driver error", func(t *testing.T) {
		err := translateError("jobs", &pq.Error{Code: "23502", Message: "null value in column"})
		assert.ErrorIs(t, err, ErrDatabase)
		assert.NotErrorIs(t, err, ErrDuplicate)
	})

	t.Run("generic error", func(t *testing.T) {
		err := translateError("jobs", errors.New("connection reset by peer"))
		assert.ErrorIs(t, err, ErrDatabase)
		assert.False(t, IsMissingTable(err))
		assert.Contains(t, err.Error(), "connection reset by peer")
	})

	t.Run("no rows", func(t *testing.T) {
		err := translateError("jobs", fmt.Errorf("get: %w", sql.ErrNoRows))
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("already translated", func(t *testing.T) {
		assert.Equal(t, ErrNotFound, translateError("jobs", ErrNotFound))

		invalid := fmt.Errorf("%w: %q", ErrInvalidIdentifier, "bad;name")
		assert.Equal(t, invalid, translateError("jobs", invalid))
	})

	t.Run("wrapped driver error", func(t *testing.T) {
		err := translateError("users", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}))
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestRunTranslatesOperationErrors(t *testing.T) {
	g := &SQLGateway{}
	ctx := context.Background()

	err := g.run(ctx, "Create", "saved_jobs", func(context.Context) error {
		return &pq.Error{Code: "23505"}
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = g.run(ctx, "Get", "jobs", func(context.Context) error {
		return sql.ErrNoRows
	})
	assert.Equal(t, ErrNotFound, err)

	assert.NoError(t, g.run(ctx, "Get", "jobs", func(context.Context) error { return nil }))
}

func TestMissingSQLTableTriggersFallback(t *testing.T) {
	var tried []string
	err := WithTableFallback(UserProfileTables, func(table string) error {
		tried = append(tried, table)
		if len(tried) == 1 {
			return translateError(table, &pq.Error{Code: "42P01"})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, UserProfileTables[:2], tried)
}
