// Package docstore is the document database the client talks to: documents
// addressed by slash-separated paths, grouped into collections, with
// server-assigned timestamps, merge and replace writes, range queries and
// atomic batches.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// MaxBatchOps is the largest number of writes accepted by DeleteBatch.
const MaxBatchOps = 500

var (
	ErrBatchTooLarge  = errors.New("batch exceeds maximum operations")
	ErrInvalidPath    = errors.New("invalid document path")
	ErrUnsupportedDSN = errors.New("unsupported document store DSN")
)

type serverTimestamp struct{}

// ServerTimestamp, used as a field value, is replaced with the store clock
// when the write is applied.
var ServerTimestamp = serverTimestamp{}

// Op is a comparison operator for query filters.
type Op string

const (
	OpEQ  Op = "=="
	OpGT  Op = ">"
	OpGTE Op = ">="
	OpLT  Op = "<"
	OpLTE Op = "<="
)

// Filter restricts a query to documents whose Field compares to Value. Values
// of a different type never match.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query selects documents directly inside Collection. Documents without the
// OrderBy field are left out. Limit 0 means no limit.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where appends a filter and returns the query for chaining.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

type Document struct {
	Path       string
	ID         string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// Store is implemented by MemoryStore and PostgresStore.
type Store interface {
	// Get returns common.ErrorNotFound when the document does not exist.
	Get(ctx context.Context, path string) (*Document, error)
	// Set writes data at path. With merge, nested maps are merged into the
	// existing document; without it the document is replaced.
	Set(ctx context.Context, path string, data map[string]any, merge bool) error
	// Update changes top-level fields of an existing document.
	Update(ctx context.Context, path string, data map[string]any) error
	// Add creates a document with a generated id inside collection.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, q Query) ([]Document, error)
	// DeleteBatch removes all paths atomically; at most MaxBatchOps.
	DeleteBatch(ctx context.Context, paths []string) error
	Close() error
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// splitPath returns the collection and id of a document path. Document paths
// have an even number of segments.
func splitPath(p string) (collection, id string, err error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return "", "", ErrInvalidPath
	}
	segs := strings.Split(p, "/")
	if len(segs)%2 != 0 {
		return "", "", ErrInvalidPath
	}
	for _, s := range segs {
		if s == "" {
			return "", "", ErrInvalidPath
		}
	}
	return path.Dir(p), path.Base(p), nil
}

func validCollection(c string) bool {
	if c == "" || strings.HasPrefix(c, "/") || strings.HasSuffix(c, "/") {
		return false
	}
	return len(strings.Split(c, "/"))%2 == 1
}

// String returns a string field or "".
func (d *Document) String(key string) string {
	s, _ := d.Data[key].(string)
	return s
}

// Time returns a timestamp field or the zero time.
func (d *Document) Time(key string) time.Time {
	t, _ := d.Data[key].(time.Time)
	return t
}

// Map returns a nested map field or nil.
func (d *Document) Map(key string) map[string]any {
	m, _ := d.Data[key].(map[string]any)
	return m
}
