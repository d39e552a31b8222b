package session

import (
	"context"
	"testing"
	"time"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *models.Session {
	return &models.Session{
		UID:       "u1",
		Username:  "ana",
		Email:     "ana@example.com",
		Role:      models.RoleNormal,
		Token:     "tok",
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestManager_SetRestoresAfterRestart(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	m, err := NewManager(ctx, storage, "s3cret")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, testSession()))

	raw, err := storage.Get(ctx, keySession)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ana@example.com")

	restarted, err := NewManager(ctx, storage, "s3cret")
	require.NoError(t, err)
	assert.Nil(t, restarted.Current())

	s, err := restarted.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), s)
	assert.Equal(t, "ana", restarted.Current().Username)
}

func TestManager_WrongSecretIsSignedOut(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	m, err := NewManager(ctx, storage, "one")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, testSession()))

	other, err := NewManager(ctx, storage, "two")
	require.NoError(t, err)
	_, err = other.Ensure(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
}

func TestManager_UnsealedWithoutSecret(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)

	m, err := NewManager(ctx, storage, "")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, testSession()))

	raw, err := storage.Get(ctx, keySession)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"uid":"u1"`)

	restarted, err := NewManager(ctx, storage, "")
	require.NoError(t, err)
	s, err := restarted.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UID)
}

func TestManager_EnsureWithoutSession(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, openTestStorage(t), "x")
	require.NoError(t, err)
	_, err = m.Ensure(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)

	memOnly, err := NewManager(ctx, nil, "x")
	require.NoError(t, err)
	_, err = memOnly.Ensure(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
	require.NoError(t, memOnly.Set(ctx, testSession()))
	s, err := memOnly.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UID)
}

func TestManager_ExpiredSessionIsDropped(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)
	m, err := NewManager(ctx, storage, "x")
	require.NoError(t, err)

	s := testSession()
	s.ExpiresAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.Set(ctx, s))

	m.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	_, err = m.Ensure(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
	assert.Nil(t, m.Current())

	raw, err := storage.Get(ctx, keySession)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestManager_ClearKeepsSalt(t *testing.T) {
	ctx := context.Background()
	storage := openTestStorage(t)
	m, err := NewManager(ctx, storage, "x")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, testSession()))
	require.NoError(t, storage.Set(ctx, "theme", []byte("dark")))

	salt, err := storage.Get(ctx, keySalt)
	require.NoError(t, err)

	require.NoError(t, m.Clear(ctx))
	assert.Nil(t, m.Current())

	theme, err := storage.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Nil(t, theme)

	after, err := storage.Get(ctx, keySalt)
	require.NoError(t, err)
	assert.Equal(t, salt, after)

	// A new session is still readable after a restart.
	require.NoError(t, m.Set(ctx, testSession()))
	restarted, err := NewManager(ctx, storage, "x")
	require.NoError(t, err)
	_, err = restarted.Ensure(ctx)
	require.NoError(t, err)
}

func TestManager_SetRejectsEmpty(t *testing.T) {
	m, err := NewManager(context.Background(), nil, "")
	require.NoError(t, err)
	require.ErrorIs(t, m.Set(context.Background(), &models.Session{}), common.ErrorValidation)
	require.ErrorIs(t, m.Set(context.Background(), nil), common.ErrorValidation)
}

func TestManager_CurrentIsACopy(t *testing.T) {
	m, err := NewManager(context.Background(), nil, "")
	require.NoError(t, err)
	require.NoError(t, m.Set(context.Background(), testSession()))
	m.Current().Username = "changed"
	assert.Equal(t, "ana", m.Current().Username)
}
