package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/vattr"
	"github.com/ygrebnov/vattr/errors"
	"github.com/ygrebnov/vattr/internal/logging"
	"github.com/ygrebnov/vattr/sqlstore"
)

// result is what the command prints once the record is saved and reloaded.
type result struct {
	ID         string         `yaml:"id"`
	Table      string         `yaml:"table"`
	Store      string         `yaml:"store"`
	Attributes map[string]any `yaml:"attributes"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &Options{}
	if _, err := flags.ParseArgs(opts, args); err != nil {
		return err
	}

	logger, cleanup := logging.SetupLogger(logging.Config{
		Level:  opts.LogLevel,
		SeqURL: opts.SeqURL,
		Output: stderr,
	})
	defer cleanup()

	dialect, err := sqlstore.DialectFor(opts.Driver)
	if err != nil {
		return err
	}
	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}
	defer db.Close()
	if dialect == sqlstore.SQLite {
		db.SetMaxOpenConns(1)
	}

	if opts.Create {
		if _, err := db.ExecContext(ctx, createTableSQL(dialect, opts.Table, opts.Key, opts.Store)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", opts.Table, err)
		}
	}

	table, err := sqlstore.Introspect(ctx, db, dialect, opts.Table)
	if err != nil {
		return err
	}
	class, err := vattr.NewClass(opts.Table, table, vattr.WithCodecName(opts.Codec), vattr.WithLogger(logger))
	if err != nil {
		return err
	}
	rules, err := opts.ruleTags()
	if err != nil {
		return err
	}
	err = class.PersistVirtualAttributes(vattr.Config{StoreColumn: opts.Store, Attributes: opts.Attrs, Rules: rules})
	if err != nil {
		return err
	}

	repo, err := sqlstore.NewRepository(db, dialect, opts.Table, class,
		sqlstore.WithKeyColumn(opts.Key),
		sqlstore.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	rec, err := loadRecord(ctx, repo, opts.Key, opts.ID)
	if err != nil {
		return err
	}
	for _, kv := range opts.Set {
		name, value, err := parseAssignment(kv)
		if err != nil {
			return err
		}
		if err := class.Set(rec, name, value); err != nil {
			return err
		}
	}
	if err := class.Validate(ctx, rec); err != nil {
		return err
	}

	id, err := repo.Save(ctx, rec)
	if err != nil {
		return err
	}
	logger.Info("record saved", slog.String("table", opts.Table), slog.String("id", id))

	saved, err := repo.Find(ctx, id)
	if err != nil {
		return err
	}
	out := result{ID: id, Table: opts.Table, Store: opts.Store, Attributes: make(map[string]any)}
	for _, name := range class.CustomAttributes() {
		if v, ok := class.Get(saved, name); ok {
			out.Attributes[name] = v
		}
	}

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// loadRecord returns the stored record with the given id, or a new record
// carrying that id when there is none.
func loadRecord(ctx context.Context, repo *sqlstore.Repository, key, id string) (vattr.Row, error) {
	if id == "" {
		return vattr.Row{}, nil
	}
	rec, err := repo.Find(ctx, id)
	if stderrors.Is(err, errors.ErrRecordNotFound) {
		return vattr.Row{key: id}, nil
	}
	return rec, err
}

// parseAssignment splits name=value and decodes value as a YAML scalar, so
// that --set size=42 stores an integer.
func parseAssignment(kv string) (string, any, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, errorc.With(errors.ErrInvalidValue, errorc.String(errors.ErrorFieldAttributeName, kv))
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return "", nil, errorc.With(
			errors.ErrInvalidValue,
			errorc.String(errors.ErrorFieldAttributeName, name),
			errorc.String(errors.ErrorFieldCause, err.Error()),
		)
	}
	return name, value, nil
}

func createTableSQL(d *sqlstore.Dialect, table, key, store string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s VARCHAR(36) PRIMARY KEY, %s VARCHAR(255), %s TEXT)",
		d.Quote(table), d.Quote(key), d.Quote("name"), d.Quote(store))
}
