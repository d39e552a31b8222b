package docstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mindfulplus/mindful/internal/common"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

var pgNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := NewPostgresStore(db)
	s.now = fixedClock(pgNow)
	return s, mock
}

var (
	qSelectByPath = `(?s)^SELECT\s+path,\s*doc_id,\s*data,\s*create_time,\s*update_time\s+FROM\s+documents\s+WHERE\s+path\s*=\s*\$1$`
	qLock         = `(?s)^SELECT\s+data\s+FROM\s+documents\s+WHERE\s+path\s*=\s*\$1\s+FOR\s+UPDATE$`
	qUpsert       = `(?s)^INSERT\s+INTO\s+documents\s*\(path,\s*collection,\s*doc_id,\s*data,\s*create_time,\s*update_time\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$5\)\s*ON\s+CONFLICT\s*\(path\)\s*DO\s+UPDATE`
	qDelete       = `(?s)^DELETE\s+FROM\s+documents\s+WHERE\s+path\s*=\s*\$1$`
)

func TestPostgresGet_Found(t *testing.T) {
	s, mock := newStoreWithMock(t)
	rows := sqlmock.NewRows([]string{"path", "doc_id", "data", "create_time", "update_time"}).
		AddRow("users/u1", "u1", `{"email":"a@b.c","createdAt":{"$time":"2025-05-01T10:00:00.000000Z"}}`, pgNow, pgNow)
	mock.ExpectQuery(qSelectByPath).WithArgs("users/u1").WillReturnRows(rows)

	doc, err := s.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	require.Equal(t, "u1", doc.ID)
	require.Equal(t, "a@b.c", doc.String("email"))
	require.True(t, doc.Time("createdAt").Equal(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_NotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(qSelectByPath).WithArgs("users/u1").WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "users/u1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGet_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectQuery(qSelectByPath).WithArgs("users/u1").WillReturnError(errors.New("db down"))

	_, err := s.Get(context.Background(), "users/u1")
	require.Error(t, err)
	require.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestPostgresSet_ReplaceUpserts(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectExec(qUpsert).
		WithArgs("users/u1/recommendations/2025-05-01", "users/u1/recommendations", "2025-05-01",
			`{"date":"2025-05-01","meta":{},"text":"B","updatedAt":{"$time":"2025-05-01T12:00:00.000000Z"}}`, pgNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Set(context.Background(), "users/u1/recommendations/2025-05-01", map[string]any{
		"date": "2025-05-01", "text": "B", "meta": map[string]any{}, "updatedAt": ServerTimestamp,
	}, false)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSet_MergeReadsAndWritesInTx(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("users/u1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"professional":{"fullName":"Ana","phone":"1"},"type":"profesional"}`))
	mock.ExpectExec(qUpsert).
		WithArgs("users/u1", "users", "u1", `{"professional":{"fullName":"Ana","phone":"2"},"type":"profesional"}`, pgNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Set(context.Background(), "users/u1", map[string]any{"professional": map[string]any{"phone": "2"}}, true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSet_MergeCreatesMissing(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("users/u1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(qUpsert).
		WithArgs("users/u1", "users", "u1", `{"type":"normal"}`, pgNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(context.Background(), "users/u1", map[string]any{"type": "normal"}, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_MissingRollsBack(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("users/u1/notes/n1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Update(context.Background(), "users/u1/notes/n1", map[string]any{"title": "x"})
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_Success(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("users/u1/notes/n1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"content":"c","title":"a"}`))
	mock.ExpectExec(`(?s)^UPDATE\s+documents\s+SET\s+data\s*=\s*\$2,\s*update_time\s*=\s*\$3\s+WHERE\s+path\s*=\s*\$1$`).
		WithArgs("users/u1/notes/n1", `{"content":"c","title":"b"}`, pgNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Update(context.Background(), "users/u1/notes/n1", map[string]any{"title": "b"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteBatch_Transactional(t *testing.T) {
	s, mock := newStoreWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(qDelete).WithArgs("r/a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDelete).WithArgs("r/b").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.DeleteBatch(context.Background(), []string{"r/a", "r/b"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteBatch_TooLarge(t *testing.T) {
	s, _ := newStoreWithMock(t)
	require.ErrorIs(t, s.DeleteBatch(context.Background(), make([]string, MaxBatchOps+1)), ErrBatchTooLarge)
}

func TestBuildQuery_RangeOrderLimit(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 23, 59, 59, 0, time.UTC)
	q := Query{Collection: "users/u1/notes", OrderBy: "updatedAt", Descending: true, Limit: 500}.
		Where("updatedAt", OpGTE, from).
		Where("updatedAt", OpLTE, to)

	sqlText, args, err := buildQuery(q)
	require.NoError(t, err)
	require.Equal(t, `SELECT path, doc_id, data, create_time, update_time FROM documents`+
		` WHERE collection = $1`+
		` AND data->$2::text->>'$time' >= $3`+
		` AND data->$4::text->>'$time' <= $5`+
		` AND data->$6::text IS NOT NULL`+
		` ORDER BY data->$7::text DESC, path LIMIT $8`, sqlText)
	require.Equal(t, []any{
		"users/u1/notes",
		"updatedAt", "2025-05-01T00:00:00.000000Z",
		"updatedAt", "2025-05-01T23:59:59.000000Z",
		"updatedAt", "updatedAt", 500,
	}, args)
}

func TestBuildQuery_StringNestedAndNumber(t *testing.T) {
	q := Query{Collection: "users"}.
		Where("professional.type", OpEQ, "profesional").
		Where("age", OpGT, 3)

	sqlText, args, err := buildQuery(q)
	require.NoError(t, err)
	require.Equal(t, `SELECT path, doc_id, data, create_time, update_time FROM documents`+
		` WHERE collection = $1`+
		` AND data->$2::text->>$3::text = $4`+
		` AND (jsonb_typeof(data->$5::text) = 'number' AND (data->>$6::text)::numeric > $7)`+
		` ORDER BY path`, sqlText)
	require.Equal(t, []any{"users", "professional", "type", "profesional", "age", "age", float64(3)}, args)
}

func TestBuildQuery_RejectsUnknownOperator(t *testing.T) {
	_, _, err := buildQuery(Query{Collection: "r", Filters: []Filter{{Field: "a", Op: "!=", Value: 1}}})
	require.Error(t, err)
}

func TestPostgresQuery_ScansRows(t *testing.T) {
	s, mock := newStoreWithMock(t)
	rows := sqlmock.NewRows([]string{"path", "doc_id", "data", "create_time", "update_time"}).
		AddRow("users/u1/notes/a", "a", `{"title":"A"}`, pgNow, pgNow).
		AddRow("users/u1/notes/b", "b", `{"title":"B"}`, pgNow, pgNow)
	mock.ExpectQuery(`(?s)^SELECT\s+path.*FROM\s+documents\s+WHERE\s+collection\s*=\s*\$1.*LIMIT\s+\$4$`).
		WithArgs("users/u1/notes", "updatedAt", "updatedAt", 100).
		WillReturnRows(rows)

	docs, err := s.Query(context.Background(), Query{Collection: "users/u1/notes", OrderBy: "updatedAt", Descending: true, Limit: 100})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "A", docs[0].String("title"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesGoose(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db))
	require.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("bad migration")
	}
	require.EqualError(t, RunMigrations(context.Background(), db), "bad migration")
}

func TestOpen_SelectsBackend(t *testing.T) {
	s, err := Open(context.Background(), MemoryDSN)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), "mysql://x")
	require.ErrorIs(t, err, ErrUnsupportedDSN)
}

func TestShared_ReturnsSingleton(t *testing.T) {
	require.NoError(t, CloseShared())
	t.Cleanup(func() { _ = CloseShared() })

	a, err := Shared(context.Background(), "")
	require.NoError(t, err)
	b, err := Shared(context.Background(), "postgres://ignored")
	require.NoError(t, err)
	require.Same(t, a, b)
}
