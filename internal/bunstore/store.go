// Package bunstore implements the store.Store contract on top of bun,
// backed by SQLite or Postgres. Record identifiers are the table's
// auto-incremented integer primary key, which gives the monotonic,
// never-reused ordering the pagination protocol relies on.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-response-cache/store"
)

// row is the bun model shared by both response tables. The concrete table
// is supplied per query via ModelTableExpr.
type row struct {
	bun.BaseModel `bun:"table:responses,alias:r"`

	ID         uint64    `bun:"id,pk,autoincrement"`
	Dataset    string    `bun:"dataset_name"`
	Config     string    `bun:"config_name"`
	Split      string    `bun:"split_name"`
	Payload    []byte    `bun:"payload"`
	HTTPStatus int       `bun:"http_status"`
	ErrorCode  string    `bun:"error_code"`
	Details    []byte    `bun:"details"`
	Stale      bool      `bun:"stale"`
	CreatedAt  time.Time `bun:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at"`
}

// Store implements store.Store over a bun.DB.
type Store struct {
	db       *bun.DB
	maxBytes int
}

var _ store.Store = (*Store)(nil)

// Open connects to the configured database, creates the response tables
// and their indexes if missing, and returns the ready store.
func Open(ctx context.Context, cfg store.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bunstore: invalid config: %w", err)
	}

	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)
	switch cfg.Driver {
	case store.DriverSQLite:
		sqldb, err = sql.Open("sqlite3", cfg.DSN)
		if err == nil {
			db = bun.NewDB(sqldb, sqlitedialect.New())
		}
	case store.DriverPostgres:
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			db = bun.NewDB(sqldb, pgdialect.New())
		}
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("bunstore: open: %w", err)
	}

	s := &Store{db: db, maxBytes: cfg.MaxEntryBytes}
	for _, table := range []string{store.SplitsTable, store.FirstRowsTable} {
		if err := s.initSchema(ctx, cfg.Driver, table); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// initSchema creates one response table and its indexes. The id column
// must never reuse identifiers, hence AUTOINCREMENT on SQLite instead of
// the default rowid reuse behavior.
func (s *Store) initSchema(ctx context.Context, driver, table string) error {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	blobType := "BLOB"
	timeType := "TIMESTAMP"
	if driver == store.DriverPostgres {
		idCol = "id BIGSERIAL PRIMARY KEY"
		blobType = "BYTEA"
		timeType = "TIMESTAMPTZ"
	}

	ddl := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s,
				dataset_name TEXT NOT NULL,
				config_name TEXT NOT NULL DEFAULT '',
				split_name TEXT NOT NULL DEFAULT '',
				payload %s,
				http_status INTEGER NOT NULL,
				error_code TEXT NOT NULL DEFAULT '',
				details %s,
				stale BOOLEAN NOT NULL DEFAULT FALSE,
				created_at %s NOT NULL,
				updated_at %s NOT NULL
			)`, table, idCol, blobType, blobType, timeType, timeType),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_key ON %s (dataset_name, config_name, split_name)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS ix_%s_status ON %s (http_status)`, table, table),
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("bunstore: init schema for %s: %w", table, err)
		}
	}
	return nil
}

// Upsert implements store.Store. The ON CONFLICT clause replaces every
// mutable column in place, so the row keeps its id and created_at across
// upserts of the same key.
func (s *Store) Upsert(ctx context.Context, table string, rec *store.Record) error {
	if size := len(rec.Payload) + len(rec.Details); size > s.maxBytes {
		return &store.EntrySizeError{Size: size, Limit: s.maxBytes}
	}

	now := time.Now().UTC()
	r := &row{
		Dataset:    rec.Dataset,
		Config:     rec.Config,
		Split:      rec.Split,
		Payload:    rec.Payload,
		HTTPStatus: rec.HTTPStatus,
		ErrorCode:  rec.ErrorCode,
		Details:    rec.Details,
		Stale:      false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.NewInsert().
		Model(r).
		ModelTableExpr("?", bun.Ident(table)).
		On("CONFLICT (dataset_name, config_name, split_name) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("http_status = EXCLUDED.http_status").
		Set("error_code = EXCLUDED.error_code").
		Set("details = EXCLUDED.details").
		Set("stale = EXCLUDED.stale").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: upsert into %s: %w", table, err)
	}
	return nil
}

// FindOne implements store.Store. A miss is reported as a nil record, not
// an error.
func (s *Store) FindOne(ctx context.Context, table string, sc store.Scope) (*store.Record, error) {
	r := new(row)
	q := s.db.NewSelect().
		Model(r).
		ModelTableExpr("? AS r", bun.Ident(table)).
		Limit(1)
	q = applyScopeSelect(q, sc)

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bunstore: find in %s: %w", table, err)
	}
	return r.toRecord(), nil
}

// DeleteMany implements store.Store.
func (s *Store) DeleteMany(ctx context.Context, table string, sc store.Scope) error {
	q := s.db.NewDelete().
		Model((*row)(nil)).
		ModelTableExpr("? AS r", bun.Ident(table))
	for _, c := range scopeConds(sc) {
		q = q.Where(c.expr, c.arg)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: delete from %s: %w", table, err)
	}
	return nil
}

// MarkStaleMany implements store.Store. Only the stale column changes.
func (s *Store) MarkStaleMany(ctx context.Context, table string, sc store.Scope) error {
	q := s.db.NewUpdate().
		Model((*row)(nil)).
		ModelTableExpr("? AS r", bun.Ident(table)).
		Set("stale = ?", true)
	for _, c := range scopeConds(sc) {
		q = q.Where(c.expr, c.arg)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: mark stale in %s: %w", table, err)
	}
	return nil
}

// CountByStatus implements store.Store.
func (s *Store) CountByStatus(ctx context.Context, table string) (map[int]int, error) {
	var counts []struct {
		HTTPStatus int `bun:"http_status"`
		N          int `bun:"n"`
	}
	err := s.db.NewSelect().
		TableExpr("? AS r", bun.Ident(table)).
		ColumnExpr("r.http_status AS http_status").
		ColumnExpr("count(*) AS n").
		GroupExpr("r.http_status").
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("bunstore: count by status in %s: %w", table, err)
	}

	histogram := make(map[int]int, len(counts))
	for _, c := range counts {
		histogram[c.HTTPStatus] = c.N
	}
	return histogram, nil
}

// ListAfter implements store.Store.
func (s *Store) ListAfter(ctx context.Context, table string, afterID uint64, limit int) ([]store.Record, error) {
	var rows []row
	q := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr("? AS r", bun.Ident(table)).
		OrderExpr("r.id ASC").
		Limit(limit)
	if afterID > 0 {
		q = q.Where("r.id > ?", afterID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("bunstore: list from %s: %w", table, err)
	}

	records := make([]store.Record, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].toRecord())
	}
	return records, nil
}

// DistinctDatasets implements store.Store.
func (s *Store) DistinctDatasets(ctx context.Context, table string, filter store.StatusFilter) ([]string, error) {
	q := s.db.NewSelect().
		TableExpr("? AS r", bun.Ident(table)).
		ColumnExpr("DISTINCT r.dataset_name").
		OrderExpr("r.dataset_name ASC")
	if filter == store.StatusSuccess {
		q = q.Where("r.http_status BETWEEN 200 AND 299")
	} else {
		q = q.Where("r.http_status < 200 OR r.http_status >= 300")
	}

	names := make([]string, 0)
	if err := q.Scan(ctx, &names); err != nil {
		return nil, fmt.Errorf("bunstore: distinct datasets in %s: %w", table, err)
	}
	return names, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

func (r *row) toRecord() *store.Record {
	return &store.Record{
		ID:         r.ID,
		Dataset:    r.Dataset,
		Config:     r.Config,
		Split:      r.Split,
		Payload:    r.Payload,
		HTTPStatus: r.HTTPStatus,
		ErrorCode:  r.ErrorCode,
		Details:    r.Details,
		Stale:      r.Stale,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type cond struct {
	expr string
	arg  any
}

// scopeConds translates a key-prefix scope into WHERE conditions. The
// dataset condition is always present; config and split are added only
// when constrained, which is what gives delete/mark-stale their prefix
// semantics.
func scopeConds(sc store.Scope) []cond {
	conds := []cond{{expr: "r.dataset_name = ?", arg: sc.Dataset}}
	if sc.Config != "" {
		conds = append(conds, cond{expr: "r.config_name = ?", arg: sc.Config})
		if sc.Split != "" {
			conds = append(conds, cond{expr: "r.split_name = ?", arg: sc.Split})
		}
	}
	return conds
}

func applyScopeSelect(q *bun.SelectQuery, sc store.Scope) *bun.SelectQuery {
	for _, c := range scopeConds(sc) {
		q = q.Where(c.expr, c.arg)
	}
	return q
}
