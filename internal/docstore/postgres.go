package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/dbx"
	"github.com/mindfulplus/mindful/internal/docstore/migrations"
	"github.com/pressly/goose/v3"
)

// PostgresStore persists documents as JSONB rows of a single table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenPostgres connects with the pgx driver, checks the connection and
// migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate document store: %w", err)
	}
	return NewPostgresStore(db), nil
}

const selectColumns = `SELECT path, doc_id, data, create_time, update_time FROM documents`

const upsertQuery = `INSERT INTO documents (path, collection, doc_id, data, create_time, update_time)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, update_time = EXCLUDED.update_time`

func (s *PostgresStore) Get(ctx context.Context, p string) (*Document, error) {
	if _, _, err := splitPath(p); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE path = $1`, p)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Set(ctx context.Context, p string, data map[string]any, merge bool) error {
	collection, id, err := splitPath(p)
	if err != nil {
		return err
	}
	now := s.now()
	incoming := resolve(data, now)

	if !merge {
		return s.upsert(ctx, s.db, p, collection, id, incoming, now)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := lockData(ctx, tx, p)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return s.upsert(ctx, tx, p, collection, id, mergeInto(current, incoming), now)
	})
}

func (s *PostgresStore) Update(ctx context.Context, p string, data map[string]any) error {
	if _, _, err := splitPath(p); err != nil {
		return err
	}
	now := s.now()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := lockData(ctx, tx, p)
		if err != nil {
			return err
		}
		for k, v := range resolve(data, now) {
			current[k] = v
		}
		raw, err := encode(current)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET data = $2, update_time = $3 WHERE path = $1`,
			p, string(raw), now); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	if !validCollection(collection) {
		return "", ErrInvalidPath
	}
	id := uuid.NewString()
	now := s.now()
	if err := s.upsert(ctx, s.db, Join(collection, id), collection, id, resolve(data, now), now); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Delete(ctx context.Context, p string) error {
	if _, _, err := splitPath(p); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, p); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBatch(ctx context.Context, paths []string) error {
	if len(paths) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	for _, p := range paths {
		if _, _, err := splitPath(p); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, p := range paths {
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, p); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if !validCollection(q.Collection) {
		return nil, ErrInvalidPath
	}
	query, args, err := buildQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) upsert(ctx context.Context, db dbx.DBTX, p, collection, id string, data map[string]any, now time.Time) error {
	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if _, err := db.ExecContext(ctx, upsertQuery, p, collection, id, string(raw), now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func lockData(ctx context.Context, db dbx.DBTX, p string) (map[string]any, error) {
	var raw []byte
	err := db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = $1 FOR UPDATE`, p).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decode(raw)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc Document
		raw []byte
	)
	if err := row.Scan(&doc.Path, &doc.ID, &raw, &doc.CreateTime, &doc.UpdateTime); err != nil {
		return nil, err
	}
	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Path, err)
	}
	doc.Data = data
	return &doc, nil
}

type queryBuilder struct {
	args []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// jsonField is the JSONB expression of a dotted field.
func (b *queryBuilder) jsonField(field string) string {
	expr := "data"
	for _, part := range strings.Split(field, ".") {
		expr += "->" + b.arg(part) + "::text"
	}
	return expr
}

// textField is the text expression of a dotted field.
func (b *queryBuilder) textField(field string) string {
	parts := strings.Split(field, ".")
	expr := "data"
	for _, part := range parts[:len(parts)-1] {
		expr += "->" + b.arg(part) + "::text"
	}
	return expr + "->>" + b.arg(parts[len(parts)-1]) + "::text"
}

func buildQuery(q Query) (string, []any, error) {
	b := &queryBuilder{}
	var sb strings.Builder
	sb.WriteString(selectColumns)
	sb.WriteString(` WHERE collection = ` + b.arg(q.Collection))

	for _, f := range q.Filters {
		cond, err := b.filter(f)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" AND " + cond)
	}
	if q.OrderBy != "" {
		sb.WriteString(" AND " + b.jsonField(q.OrderBy) + " IS NOT NULL")
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		// jsonb ordering compares tagged timestamps by their fixed-width string.
		sb.WriteString(" ORDER BY " + b.jsonField(q.OrderBy) + " " + dir + ", path")
	} else {
		sb.WriteString(" ORDER BY path")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + b.arg(q.Limit))
	}
	return sb.String(), b.args, nil
}

func (b *queryBuilder) filter(f Filter) (string, error) {
	switch f.Op {
	case OpEQ, OpGT, OpGTE, OpLT, OpLTE:
	default:
		return "", fmt.Errorf("unsupported operator %q", f.Op)
	}
	op := string(f.Op)
	if f.Op == OpEQ {
		op = "="
	}
	switch v := f.Value.(type) {
	case time.Time:
		field := b.jsonField(f.Field)
		return field + "->>'" + timeTag + "' " + op + " " + b.arg(encodeTime(v)), nil
	case string:
		return b.textField(f.Field) + " " + op + " " + b.arg(v), nil
	case bool:
		return b.textField(f.Field) + " " + op + " " + b.arg(strconv.FormatBool(v)), nil
	}
	n, ok := toFloat(f.Value)
	if !ok {
		return "", fmt.Errorf("unsupported filter value %T", f.Value)
	}
	typed := "jsonb_typeof(" + b.jsonField(f.Field) + ") = 'number'"
	return "(" + typed + " AND (" + b.textField(f.Field) + ")::numeric " + op + " " + b.arg(n) + ")", nil
}
