package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "console:"), mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "state", "session.json"))
	require.NoError(t, err)
	redisStore, _ := newRedisStore(t)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"redis":  redisStore,
	}
}

func TestStores_SaveLoadClear(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			assert.True(t, loaded.Empty())

			first := Session{AccessToken: "access-1", RefreshToken: "refresh-1"}
			require.NoError(t, store.Save(ctx, first))
			loaded, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, loaded)

			second := Session{AccessToken: "access-2", RefreshToken: "refresh-2"}
			require.NoError(t, store.Save(ctx, second))
			loaded, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, second, loaded)

			require.NoError(t, store.Clear(ctx))
			loaded, err = store.Load(ctx)
			require.NoError(t, err)
			assert.True(t, loaded.Empty())

			// Clearing twice is a no-op.
			require.NoError(t, store.Clear(ctx))
		})
	}
}

func TestFileStore_UsesStorageKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), Session{AccessToken: "a", RefreshToken: "r"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"token": "a"`)
	assert.Contains(t, string(data), `"refreshToken": "r"`)
}

func TestFileStore_EmptyAndCorruptFiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Empty())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = store.Load(context.Background())
	require.Error(t, err)
}

func TestRedisStore_ClearRemovesBothKeys(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, mr.Exists("console:token"))
	assert.True(t, mr.Exists("console:refreshToken"))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("console:token"))
	assert.False(t, mr.Exists("console:refreshToken"))
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore("  ")
	require.Error(t, err)
}
