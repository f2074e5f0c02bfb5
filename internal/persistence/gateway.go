// Package persistence is the table-level data access layer shared by every entity service.
//
// A Gateway knows nothing about entities: callers name a table, describe rows with a Record
// (column -> value) and decode results into their own `db`-tagged structs.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrTableNotFound     = errors.New("could not find the table")
	ErrDatabase          = errors.New("database error")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNoTables          = errors.New("no table names configured for fallback")
)

// Match is an exact-equality conjunction over columns.
type Match map[string]any

// Record holds the column values written by Create and Update.
type Record map[string]any

// Query narrows a Filter call. A zero Query returns every row in provider order.
type Query struct {
	Match Match
	// Order is a column name, prefixed with "-" for descending.
	Order string
	// Limit <= 0 means unlimited.
	Limit int
}

type Gateway interface {
	// Filter decodes the matching rows into dest, which must be a pointer to a slice.
	Filter(ctx context.Context, table string, q Query, dest any) error
	// Create inserts rec and decodes the stored row into dest. A nil dest discards the row.
	Create(ctx context.Context, table string, rec Record, dest any) error
	// Update applies rec to the row with the given id and decodes the result into dest.
	Update(ctx context.Context, table string, id uuid.UUID, rec Record, dest any) error
	Delete(ctx context.Context, table string, id uuid.UUID) error
	// DeleteWhere removes every row matching match. An empty match is rejected.
	DeleteWhere(ctx context.Context, table string, match Match) (int64, error)
	// Increment adds delta to an integer column in a single statement.
	Increment(ctx context.Context, table string, id uuid.UUID, column string, delta int, dest any) error
	// InTx runs fn against a gateway whose writes commit or roll back together.
	InTx(ctx context.Context, fn func(tx Gateway) error) error
}

const (
	ColumnID          = "id"
	ColumnCreatedDate = "created_date"
	ColumnUpdatedDate = "updated_date"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// OrderSpec is a parsed Query.Order.
type OrderSpec struct {
	Column     string
	Descending bool
}

// ParseOrder splits "-created_date" into its column and direction. ok is false for an empty order.
func ParseOrder(order string) (spec OrderSpec, ok bool, err error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return OrderSpec{}, false, nil
	}

	spec.Descending = strings.HasPrefix(order, "-")
	spec.Column = strings.TrimPrefix(order, "-")
	if err := validateIdentifier(spec.Column); err != nil {
		return OrderSpec{}, false, err
	}

	return spec, true, nil
}

// IsMissingTable reports whether err means the table does not exist.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTableNotFound) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find the table") || strings.Contains(msg, "schema cache")
}
