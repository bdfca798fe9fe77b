package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/schema"
)

// DB is the subset of *sql.DB used here. *sql.Tx and *sql.Conn satisfy it too.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspect reads the columns of table from the database catalog.
func Introspect(ctx context.Context, db DB, d *Dialect, table string) (*schema.Table, error) {
	rows, err := db.QueryContext(ctx, d.columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, sqlType string
		if err := rows.Scan(&name, &sqlType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, schema.NewColumn(name, sqlType))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, errorc.With(
			errors.ErrTableNotFound,
			errorc.String(errors.ErrorFieldDialect, d.Name),
			errorc.String(errors.ErrorFieldTable, table),
		)
	}
	return schema.NewTable(table, columns...), nil
}
