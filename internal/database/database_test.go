package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCompliance(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jsonDB, err := NewJSONDatabase(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		store Store
	}{
		{name: "MemoryStore", store: NewMemoryStore()},
		{name: "JSONDatabase", store: jsonDB},
		{name: "RedisStore", store: NewRedisStoreWithClient(client, "test", 0)},
		{name: "Scoped", store: Scoped(NewMemoryStore(), "abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testStoreOperations(t, tt.store)
		})
	}
}

func testStoreOperations(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, CartKey, `[{"name":"Jollof Rice"}]`))
	value, err := store.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Jollof Rice"}]`, value)

	require.NoError(t, store.Set(ctx, CartKey, `[]`))
	value, err = store.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Remove(ctx, CartKey))
	_, err = store.Get(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)

	// removing a missing key is not an error
	assert.NoError(t, store.Remove(ctx, LastOrderKey))
}

func TestScopedIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	a := Scoped(inner, "a")
	b := Scoped(inner, "b")

	require.NoError(t, a.Set(ctx, CartKey, "cart-a"))

	_, err := b.Get(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)

	value, err := inner.Get(ctx, "session:a:"+CartKey)
	require.NoError(t, err)
	assert.Equal(t, "cart-a", value)
}

func TestJSONDatabasePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	db, err := NewJSONDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, LastOrderKey, `{"orderNumber":"#LB123456789"}`))

	reopened, err := NewJSONDatabase(path)
	require.NoError(t, err)
	value, err := reopened.Get(ctx, LastOrderKey)
	require.NoError(t, err)
	assert.Equal(t, `{"orderNumber":"#LB123456789"}`, value)
}

func TestJSONDatabaseRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	db, err := NewJSONDatabase(path)
	require.NoError(t, err)

	_, err = db.Get(context.Background(), CartKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreAppliesPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStoreWithClient(client, "luxebites", time.Hour)
	require.NoError(t, store.Set(ctx, CartKey, "[]"))

	assert.True(t, mr.Exists("luxebites:"+CartKey))
	assert.Equal(t, time.Hour, mr.TTL("luxebites:"+CartKey))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, CartKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
