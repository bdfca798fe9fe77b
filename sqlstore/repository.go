package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/vattr"
	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/schema"
)

// DefaultKeyColumn is the primary key column used unless WithKeyColumn is given.
const DefaultKeyColumn = "id"

// Repository stores the records of one class in one table. Records are keyed
// by a string id kept in the key column.
type Repository struct {
	db      DB
	dialect *Dialect
	class   *vattr.Class
	table   string
	key     string
	logger  *slog.Logger
	newID   func() string
	columns []schema.Column
}

// Option configures a Repository.
type Option func(*Repository)

// WithKeyColumn sets the primary key column.
func WithKeyColumn(name string) Option {
	return func(r *Repository) { r.key = name }
}

// WithLogger sets the repository logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator sets the function generating ids of inserted records.
// Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRepository returns a repository of c records in table.
func NewRepository(db DB, d *Dialect, table string, c *vattr.Class, opts ...Option) (*Repository, error) {
	r := &Repository{
		db:      db,
		dialect: d,
		class:   c,
		table:   table,
		key:     DefaultKeyColumn,
		logger:  slog.Default(),
		newID:   uuid.NewString,
		columns: c.Columns(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := schema.Lookup(r.columns, r.key); !ok {
		return nil, errorc.With(
			errors.ErrMissingKeyColumn,
			errorc.String(errors.ErrorFieldTable, table),
			errorc.String(errors.ErrorFieldColumnName, r.key),
		)
	}
	return r, nil
}

// Insert writes rec as a new row and returns its id. When the key column is
// empty an id is generated; it is set on rec only once the row is written.
func (r *Repository) Insert(ctx context.Context, rec vattr.Record) (string, error) {
	row, err := r.class.Dump(rec)
	if err != nil {
		return "", err
	}
	id, ok := r.idOf(rec)
	if !ok {
		id = r.newID()
		row[r.key] = id
	}
	names, args := r.values(row, true)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.dialect.Quote(r.table),
		strings.Join(r.dialect.quoteAll(names), ", "),
		strings.Join(r.dialect.placeholders(1, len(names)), ", "),
	)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", r.table, err)
	}
	if !ok {
		rec.SetValue(r.key, id)
	}

	r.logger.Debug("record inserted", slog.String("table", r.table), slog.String("id", id))
	return id, nil
}

// Update rewrites the row of rec. It fails with errors.ErrRecordNotFound when
// no row has the id of rec.
func (r *Repository) Update(ctx context.Context, rec vattr.Record) error {
	id, ok := r.idOf(rec)
	if !ok {
		return errorc.With(errors.ErrMissingRecordID, errorc.String(errors.ErrorFieldTable, r.table))
	}

	row, err := r.class.Dump(rec)
	if err != nil {
		return err
	}
	names, args := r.values(row, false)
	if len(names) == 0 {
		return r.expectExists(ctx, id)
	}

	sets := make([]string, len(names))
	for i, name := range names {
		sets[i] = r.dialect.Quote(name) + " = " + r.dialect.Placeholder(i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		r.dialect.Quote(r.table),
		strings.Join(sets, ", "),
		r.dialect.Quote(r.key),
		r.dialect.Placeholder(len(names)+1),
	)
	res, err := r.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.table, err)
	}
	// MySQL reports matched but unchanged rows as not affected.
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		if err := r.expectExists(ctx, id); err != nil {
			return err
		}
	}

	r.logger.Debug("record updated", slog.String("table", r.table), slog.String("id", id))
	return nil
}

// Save updates rec when its row exists and inserts it otherwise.
func (r *Repository) Save(ctx context.Context, rec vattr.Record) (string, error) {
	id, ok := r.idOf(rec)
	if !ok {
		return r.Insert(ctx, rec)
	}
	err := r.Update(ctx, rec)
	if stderrors.Is(err, errors.ErrRecordNotFound) {
		return r.Insert(ctx, rec)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Find loads the row with the given id. Store columns come back decoded, so
// the class accessors can be used on the result directly.
func (r *Repository) Find(ctx context.Context, id string) (vattr.Row, error) {
	names := schema.Names(r.columns)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(r.dialect.quoteAll(names), ", "),
		r.dialect.Quote(r.table),
		r.dialect.Quote(r.key),
		r.dialect.Placeholder(1),
	)

	values := make([]any, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	err := r.db.QueryRowContext(ctx, query, id).Scan(dest...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, r.notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from %s: %w", r.table, err)
	}

	row := make(vattr.Row, len(names))
	for i, col := range r.columns {
		v := values[i]
		if b, ok := v.([]byte); ok && col.Type != schema.TypeBinary {
			v = string(b)
		}
		row[col.Name] = v
	}
	return r.class.Load(row)
}

// Delete removes the row with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		r.dialect.Quote(r.table),
		r.dialect.Quote(r.key),
		r.dialect.Placeholder(1),
	)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.table, err)
	}
	if err := r.expectAffected(res, id); err != nil {
		return err
	}

	r.logger.Debug("record deleted", slog.String("table", r.table), slog.String("id", id))
	return nil
}

func (r *Repository) idOf(rec vattr.Record) (string, bool) {
	v, ok := rec.Value(r.key)
	if !ok || v == nil {
		return "", false
	}
	id := fmt.Sprint(v)
	return id, id != ""
}

// values returns the dumped columns in table order. The key column is left
// out unless withKey is set.
func (r *Repository) values(row vattr.Row, withKey bool) ([]string, []any) {
	var (
		names []string
		args  []any
	)
	for _, col := range r.columns {
		if col.Name == r.key && !withKey {
			continue
		}
		v, ok := row[col.Name]
		if !ok {
			continue
		}
		names = append(names, col.Name)
		args = append(args, v)
	}
	return names, args
}

func (r *Repository) expectAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows of %s: %w", r.table, err)
	}
	if n == 0 {
		return r.notFound(id)
	}
	return nil
}

func (r *Repository) expectExists(ctx context.Context, id string) error {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s",
		r.dialect.Quote(r.table),
		r.dialect.Quote(r.key),
		r.dialect.Placeholder(1),
	)
	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return r.notFound(id)
	}
	if err != nil {
		return fmt.Errorf("failed to read from %s: %w", r.table, err)
	}
	return nil
}

func (r *Repository) notFound(id string) error {
	return errorc.With(
		errors.ErrRecordNotFound,
		errorc.String(errors.ErrorFieldTable, r.table),
		errorc.String(errors.ErrorFieldID, id),
	)
}
