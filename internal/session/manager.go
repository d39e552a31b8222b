// Package session keeps the signed-in user's session in process and mirrors
// it to the client cache so it survives restarts. With a secret configured
// the cached copy is sealed with AES-GCM under an argon2id key.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/cryptox"
	"github.com/mindfulplus/mindful/internal/models"
)

const (
	keySession = "session"
	keySalt    = "salt"
	saltSize   = 16
)

type Manager struct {
	mu      sync.Mutex
	current *models.Session
	storage Storage
	key     []byte
	now     func() time.Time
}

// NewManager binds the in-process session to storage. storage may be nil
// for a memory-only session. An empty secret stores the session unsealed.
func NewManager(ctx context.Context, storage Storage, secret string) (*Manager, error) {
	m := &Manager{storage: storage, now: time.Now}
	if storage == nil || secret == "" {
		return m, nil
	}
	salt, err := storage.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		salt = common.GenerateRandByteArray(saltSize)
		if err := storage.Set(ctx, keySalt, salt); err != nil {
			return nil, err
		}
	}
	m.key = cryptox.DeriveKey([]byte(secret), salt)
	return m, nil
}

// Current returns a copy of the in-process session or nil.
func (m *Manager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Set replaces the session and persists it.
func (m *Manager) Set(ctx context.Context, s *models.Session) error {
	if s == nil || s.UID == "" {
		return fmt.Errorf("%w: session without uid", common.ErrorValidation)
	}
	cp := *s
	m.mu.Lock()
	m.current = &cp
	m.mu.Unlock()

	if m.storage == nil {
		return nil
	}
	blob, err := m.encode(&cp)
	if err != nil {
		return err
	}
	return m.storage.Set(ctx, keySession, blob)
}

// Ensure returns the in-process session, restoring it from the cache when
// the process has none. Expired sessions are dropped. It returns
// common.ErrNoSession when nobody is signed in.
func (m *Manager) Ensure(ctx context.Context) (*models.Session, error) {
	if s := m.Current(); s != nil {
		if !s.Expired(m.now()) {
			return s, nil
		}
		return nil, m.expire(ctx)
	}
	if m.storage == nil {
		return nil, common.ErrNoSession
	}

	blob, err := m.storage.Get(ctx, keySession)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, common.ErrNoSession
	}
	s, err := m.decode(blob)
	if err != nil {
		// A cache sealed with another secret is unreadable; treat as signed out.
		_ = m.storage.Delete(ctx, keySession)
		return nil, common.ErrNoSession
	}
	if s.Expired(m.now()) {
		return nil, m.expire(ctx)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return m.Current(), nil
}

// Clear signs out: the in-process session and the whole client cache are
// dropped. The salt is kept so later sessions stay readable.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if m.storage == nil {
		return nil
	}
	salt, err := m.storage.Get(ctx, keySalt)
	if err != nil {
		return err
	}
	if err := m.storage.Clear(ctx); err != nil {
		return err
	}
	if len(salt) > 0 {
		return m.storage.Set(ctx, keySalt, salt)
	}
	return nil
}

func (m *Manager) expire(ctx context.Context) error {
	if err := m.Clear(ctx); err != nil {
		return err
	}
	return common.ErrNoSession
}

func (m *Manager) encode(s *models.Session) ([]byte, error) {
	if m.key == nil {
		return json.Marshal(s)
	}
	return cryptox.SealJSON(s, m.key)
}

func (m *Manager) decode(blob []byte) (*models.Session, error) {
	s := &models.Session{}
	if m.key == nil {
		if err := json.Unmarshal(blob, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := cryptox.OpenJSON(blob, m.key, s); err != nil {
		return nil, err
	}
	return s, nil
}
