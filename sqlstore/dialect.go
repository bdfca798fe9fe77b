// Package sqlstore persists records of a vattr class in a SQL table through
// database/sql. Store columns are written as codec text and decoded on read.
package sqlstore

import (
	"strconv"
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr/errors"
)

// Dialect holds the SQL differences between supported databases.
type Dialect struct {
	Name string

	// columnsQuery lists (name, declared type) of a table, in column order.
	// It takes the table name as its only argument.
	columnsQuery string
	numbered     bool
	quote        byte
}

var (
	SQLite = &Dialect{
		Name:         "sqlite",
		columnsQuery: "SELECT name, type FROM pragma_table_info(?) ORDER BY cid",
		quote:        '"',
	}
	Postgres = &Dialect{
		Name: "postgres",
		columnsQuery: "SELECT column_name, data_type FROM information_schema.columns " +
			"WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position",
		numbered: true,
		quote:    '"',
	}
	MySQL = &Dialect{
		Name: "mysql",
		columnsQuery: "SELECT column_name, data_type FROM information_schema.columns " +
			"WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position",
		quote: '`',
	}
)

var drivers = map[string]*Dialect{
	"sqlite":   SQLite,
	"sqlite3":  SQLite,
	"postgres": Postgres,
	"pgx":      Postgres,
	"mysql":    MySQL,
}

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (*Dialect, error) {
	if d, ok := drivers[strings.ToLower(strings.TrimSpace(driver))]; ok {
		return d, nil
	}
	return nil, errorc.With(errors.ErrUnsupportedDialect, errorc.String(errors.ErrorFieldDialect, driver))
}

// Placeholder returns the bind parameter for the i-th argument, starting at 1.
func (d *Dialect) Placeholder(i int) string {
	if d.numbered {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Quote quotes an identifier.
func (d *Dialect) Quote(ident string) string {
	q := string(d.quote)
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

func (d *Dialect) quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, id := range idents {
		out[i] = d.Quote(id)
	}
	return out
}

func (d *Dialect) placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = d.Placeholder(from + i)
	}
	return out
}
