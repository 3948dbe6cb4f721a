package rediskv_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate"
	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate/rediskv"
)

func setupClient(t *testing.T) (*rediskv.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := rediskv.New(rediskv.Config{Addr: mr.Addr()})
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestClient_Connect_Unreachable(t *testing.T) {
	client := rediskv.New(rediskv.Config{Addr: "localhost:1"})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.Error(t, client.Connect(ctx))
}

func TestClient_WriteAndReadFields(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	fields := map[string]string{"identifier": "user123", "fingerprint": "abc", "context": "127.0.0.1"}
	require.NoError(t, client.WriteFields(ctx, "valid-jwt:user123:abc", fields))

	got, err := client.ReadFields(ctx, "valid-jwt:user123:abc")
	require.NoError(t, err)
	require.Equal(t, fields, got)

	t.Run("overwrite replaces field values", func(t *testing.T) {
		require.NoError(t, client.WriteFields(ctx, "valid-jwt:user123:abc", map[string]string{"context": "10.0.0.1"}))

		got, err := client.ReadFields(ctx, "valid-jwt:user123:abc")
		require.NoError(t, err)
		require.Equal(t, "10.0.0.1", got["context"])
		require.Equal(t, "user123", got["identifier"])
	})

	t.Run("missing key reads empty", func(t *testing.T) {
		got, err := client.ReadFields(ctx, "no-such-key")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestClient_Exists(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	exists, err := client.Exists(ctx, "absent")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, client.WriteFields(ctx, "present", map[string]string{"f": "v"}))
	exists, err = client.Exists(ctx, "present")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestClient_SetExpiration(t *testing.T) {
	client, mr := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.WriteFields(ctx, "expiring", map[string]string{"f": "v"}))
	require.NoError(t, client.SetExpiration(ctx, "expiring", time.Hour))

	ttl := mr.TTL("expiring")
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Hour)

	t.Run("key vanishes after the ttl elapses", func(t *testing.T) {
		mr.FastForward(time.Hour + time.Second)

		exists, err := client.Exists(ctx, "expiring")
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestClient_Delete(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	require.NoError(t, client.WriteFields(ctx, "k1", map[string]string{"f": "v"}))
	require.NoError(t, client.WriteFields(ctx, "k2", map[string]string{"f": "v"}))

	require.NoError(t, client.Delete(ctx, "k1", "k2", "never-existed"))

	for _, key := range []string{"k1", "k2"} {
		exists, err := client.Exists(ctx, key)
		require.NoError(t, err)
		require.False(t, exists)
	}

	t.Run("no keys is a no-op", func(t *testing.T) {
		require.NoError(t, client.Delete(ctx))
	})
}

func TestClient_ScanKeys(t *testing.T) {
	client, _ := setupClient(t)
	ctx := context.Background()

	for _, key := range []string{
		"valid-jwt:user123:aaa",
		"valid-jwt:user123:bbb",
		"valid-jwt:other:ccc",
		"blacklisted-jwt:user123:aaa",
	} {
		require.NoError(t, client.WriteFields(ctx, key, map[string]string{"f": "v"}))
	}

	keys, err := client.ScanKeys(ctx, "valid-jwt:user123:*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"valid-jwt:user123:aaa", "valid-jwt:user123:bbb"}, keys)

	t.Run("no matches", func(t *testing.T) {
		keys, err := client.ScanKeys(ctx, "valid-jwt:nobody:*")
		require.NoError(t, err)
		require.Empty(t, keys)
	})
}

// Full pass of the store's operation surface against a live (in-process)
// Redis rather than the fake.
func TestStoreOverRedis(t *testing.T) {
	client, mr := setupClient(t)
	store := tokenstate.New(client, tokenstate.Options{})
	ctx := context.Background()

	require.NoError(t, store.RecordValid(ctx, "user123", "tok-A", "127.0.0.1", 3600))
	require.NoError(t, store.Validate(ctx, "user123", "tok-A"))

	require.NoError(t, store.RecordBlacklisted(ctx, "user123", "tok-A", "127.0.0.1", 3600))
	require.ErrorIs(t, store.Validate(ctx, "user123", "tok-A"), tokenstate.ErrTokenBlacklisted)

	require.ErrorIs(t, store.Validate(ctx, "user123", "tok-B"), tokenstate.ErrTokenNotFound)

	require.NoError(t, store.RecordValid(ctx, "user123", "tok-B", "127.0.0.1", 3600))
	require.NoError(t, store.DeleteAllByIdentifier(ctx, tokenstate.CategoryValid, "user123"))
	require.ErrorIs(t, store.Validate(ctx, "user123", "tok-B"), tokenstate.ErrTokenNotFound)

	t.Run("valid record expires naturally", func(t *testing.T) {
		require.NoError(t, store.RecordValid(ctx, "user456", "tok-C", "127.0.0.1", 60))
		require.NoError(t, store.Validate(ctx, "user456", "tok-C"))

		mr.FastForward(61 * time.Second)
		require.ErrorIs(t, store.Validate(ctx, "user456", "tok-C"), tokenstate.ErrTokenNotFound)
	})
}
