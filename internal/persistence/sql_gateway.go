package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	pqUndefinedTable  = "42P01"
	pqUniqueViolation = "23505"
)

var tracer = otel.Tracer("github.com/freshersjob/freshersjob/internal/persistence")

// SQLGateway is the Postgres Gateway.
type SQLGateway struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewSQLGateway(db *sqlx.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

func (g *SQLGateway) ext() sqlx.ExtContext {
	if g.tx != nil {
		return g.tx
	}
	return g.db
}

// run executes op, translating driver errors. Inside a transaction each operation gets its own
// savepoint so that a failed statement (for example a missing table during fallback) does not
// poison the rest of the transaction.
func (g *SQLGateway) run(ctx context.Context, name, table string, op func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "persistence."+name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", table),
	))
	defer span.End()

	if g.tx != nil {
		if _, err := g.tx.ExecContext(ctx, "SAVEPOINT gateway_op"); err != nil {
			return g.fail(span, table, err)
		}
	}

	err := op(ctx)

	if g.tx != nil {
		stmt := "RELEASE SAVEPOINT gateway_op"
		if err != nil {
			stmt = "ROLLBACK TO SAVEPOINT gateway_op"
		}
		if _, spErr := g.tx.ExecContext(ctx, stmt); spErr != nil && err == nil {
			err = spErr
		}
	}

	if err != nil {
		return g.fail(span, table, err)
	}
	return nil
}

func (g *SQLGateway) fail(span trace.Span, table string, err error) error {
	err = translateError(table, err)
	if !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func translateError(table string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidIdentifier) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUndefinedTable:
			return fmt.Errorf("%w %q: %s", ErrTableNotFound, table, pqErr.Message)
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrDatabase, table, err)
}

func (g *SQLGateway) Filter(ctx context.Context, table string, q Query, dest any) error {
	query, args, err := buildSelect(table, q)
	if err != nil {
		return err
	}

	return g.run(ctx, "Filter", table, func(ctx context.Context) error {
		return sqlx.SelectContext(ctx, g.ext(), dest, query, args...)
	})
}

func (g *SQLGateway) Create(ctx context.Context, table string, rec Record, dest any) error {
	query, args, err := buildInsert(table, rec)
	if err != nil {
		return err
	}

	return g.run(ctx, "Create", table, func(ctx context.Context) error {
		return g.returning(ctx, dest, query, args)
	})
}

func (g *SQLGateway) Update(ctx context.Context, table string, id uuid.UUID, rec Record, dest any) error {
	query, args, err := buildUpdate(table, id, rec)
	if err != nil {
		return err
	}

	return g.run(ctx, "Update", table, func(ctx context.Context) error {
		return g.returning(ctx, dest, query, args)
	})
}

func (g *SQLGateway) Increment(ctx context.Context, table string, id uuid.UUID, column string, delta int, dest any) error {
	query, args, err := buildIncrement(table, id, column, delta)
	if err != nil {
		return err
	}

	return g.run(ctx, "Increment", table, func(ctx context.Context) error {
		return g.returning(ctx, dest, query, args)
	})
}

// returning scans the RETURNING row into dest. A nil dest only checks that a row was written.
func (g *SQLGateway) returning(ctx context.Context, dest any, query string, args []any) error {
	if dest != nil {
		return sqlx.GetContext(ctx, g.ext(), dest, query, args...)
	}

	result, err := g.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (g *SQLGateway) Delete(ctx context.Context, table string, id uuid.UUID) error {
	query, args, err := buildDelete(table, id)
	if err != nil {
		return err
	}

	return g.run(ctx, "Delete", table, func(ctx context.Context) error {
		result, err := g.ext().ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (g *SQLGateway) DeleteWhere(ctx context.Context, table string, match Match) (int64, error) {
	query, args, err := buildDeleteWhere(table, match)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = g.run(ctx, "DeleteWhere", table, func(ctx context.Context) error {
		result, err := g.ext().ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}

func (g *SQLGateway) InTx(ctx context.Context, fn func(tx Gateway) error) error {
	if g.tx != nil {
		return fn(g)
	}

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrDatabase, err)
	}
	defer tx.Rollback()

	if err := fn(&SQLGateway{db: g.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrDatabase, err)
	}
	return nil
}
