package persistence

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func quote(name string) (string, error) {
	if err := validateIdentifier(name); err != nil {
		return "", err
	}
	return pq.QuoteIdentifier(name), nil
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// whereClause renders match as `"a" = $n AND ...`, numbering placeholders after args.
func whereClause(match Match, args []any) (string, []any, error) {
	parts := []string{}
	for _, col := range sortedKeys(match) {
		q, err := quote(col)
		if err != nil {
			return "", nil, err
		}
		args = append(args, match[col])
		parts = append(parts, fmt.Sprintf("%s = $%d", q, len(args)))
	}
	return strings.Join(parts, " AND "), args, nil
}

func buildSelect(table string, q Query) (string, []any, error) {
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}

	query := "SELECT * FROM " + t
	where, args, err := whereClause(q.Match, nil)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}

	order, ok, err := ParseOrder(q.Order)
	if err != nil {
		return "", nil, err
	}
	if ok {
		query += " ORDER BY " + pq.QuoteIdentifier(order.Column)
		if order.Descending {
			query += " DESC"
		} else {
			query += " ASC"
		}
	}

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	return query, args, nil
}

func buildInsert(table string, rec Record) (string, []any, error) {
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	if len(rec) == 0 {
		return "INSERT INTO " + t + " DEFAULT VALUES RETURNING *", nil, nil
	}

	cols := []string{}
	placeholders := []string{}
	args := []any{}
	for _, col := range sortedKeys(rec) {
		q, err := quote(col)
		if err != nil {
			return "", nil, err
		}
		args = append(args, rec[col])
		cols = append(cols, q)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		t, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

func buildUpdate(table string, id uuid.UUID, rec Record) (string, []any, error) {
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}

	setParts := []string{}
	args := []any{}
	for _, col := range sortedKeys(rec) {
		if col == ColumnID || col == ColumnUpdatedDate {
			continue
		}
		q, err := quote(col)
		if err != nil {
			return "", nil, err
		}
		args = append(args, rec[col])
		setParts = append(setParts, fmt.Sprintf("%s = $%d", q, len(args)))
	}
	setParts = append(setParts, pq.QuoteIdentifier(ColumnUpdatedDate)+" = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		t, strings.Join(setParts, ", "), pq.QuoteIdentifier(ColumnID), len(args))
	return query, args, nil
}

func buildIncrement(table string, id uuid.UUID, column string, delta int) (string, []any, error) {
	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	c, err := quote(column)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = COALESCE(%s, 0) + $1, %s = NOW() WHERE %s = $2 RETURNING *",
		t, c, c, pq.QuoteIdentifier(ColumnUpdatedDate), pq.QuoteIdentifier(ColumnID))
	return query, []any{delta, id}, nil
}

func buildDelete(table string, id uuid.UUID) (string, []any, error) {
	return buildDeleteWhere(table, Match{ColumnID: id})
}

func buildDeleteWhere(table string, match Match) (string, []any, error) {
	if len(match) == 0 {
		return "", nil, errors.New("refusing to delete without a match")
	}

	t, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	where, args, err := whereClause(match, nil)
	if err != nil {
		return "", nil, err
	}

	return "DELETE FROM " + t + " WHERE " + where, args, nil
}
