package persistence

import "log/slog"

// WithTableFallback runs op against each candidate table until one exists.
//
// Missing-table errors move on to the next candidate; any other error is returned immediately.
// When every candidate is missing the last missing-table error is returned.
func WithTableFallback(tables []string, op func(table string) error) error {
	var lastMissing error
	for _, table := range tables {
		err := op(table)
		if err == nil {
			return nil
		}
		if !IsMissingTable(err) {
			return err
		}

		slog.Debug("Table not found, trying next candidate", slog.String("table", table))
		lastMissing = err
	}

	if lastMissing != nil {
		return lastMissing
	}
	return ErrNoTables
}
