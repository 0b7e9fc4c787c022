package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// exerciseStore runs the contract every Store must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "abc123"))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	require.NoError(t, s.Save(ctx, "def456"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def456", got)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	// Clearing twice is fine.
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)
	exerciseStore(t, s)

	require.NoError(t, s.Save(context.Background(), "abc123"))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyringStore("", ""))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseStore(t, NewRedisStore(rdb, "", 0))
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStore(rdb, "admin:token", time.Minute)
	require.NoError(t, s.Save(context.Background(), "abc123"))
	assert.Equal(t, time.Minute, mr.TTL("admin:token"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManager_LoginOpenClear(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	m := NewManager(store)
	require.NoError(t, m.Open(ctx))
	assert.Equal(t, "", m.Token())
	assert.False(t, m.LoggedIn())

	require.ErrorIs(t, m.Login(ctx, "   "), ErrEmptyToken)
	require.NoError(t, m.Login(ctx, "abc123"))
	assert.Equal(t, "abc123", m.Token())

	// A fresh process restores the token from the store.
	m2 := NewManager(store)
	require.NoError(t, m2.Open(ctx))
	assert.Equal(t, "abc123", m2.Token())

	require.NoError(t, m2.Logout(ctx))
	assert.Equal(t, "", m2.Token())

	m3 := NewManager(store)
	require.NoError(t, m3.Open(ctx))
	assert.False(t, m3.LoggedIn())
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Clear(context.Context) error { return errors.New("disk full") }

func TestManager_ClearDropsMemoryOnStoreError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&failingStore{})
	require.NoError(t, m.Login(ctx, "abc123"))

	require.Error(t, m.Clear(ctx))
	assert.Equal(t, "", m.Token())
}

func TestManager_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	require.NoError(t, m.Login(ctx, "abc123"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				tok := m.Token()
				if tok != "abc123" && tok != "" {
					t.Errorf("unexpected token %q", tok)
					return
				}
			}
		}()
	}
	require.NoError(t, m.Clear(ctx))
	wg.Wait()
}
