package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryDSN selects the in-process store.
const MemoryDSN = "memory:"

// Open returns the store named by dsn: "memory:" (or empty) or a
// postgres:// URL.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == MemoryDSN:
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
}

var (
	sharedMu sync.Mutex
	shared   Store
)

// Shared opens the process-wide store once. Later calls return the same
// instance whatever dsn they pass.
func Shared(ctx context.Context, dsn string) (Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	s, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	shared = s
	return shared, nil
}

// CloseShared closes and forgets the process-wide store.
func CloseShared() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil
	}
	err := shared.Close()
	shared = nil
	return err
}
