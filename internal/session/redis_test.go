package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	return srv, NewRedisStore(client, ttl)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, store := newRedisStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.NewSession(ctx, "cart-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	cartID, found, err := store.CartID(ctx, token)
	if err != nil || !found {
		t.Fatalf("cart id lookup = (%q, %v, %v), want found", cartID, found, err)
	}
	if cartID != "cart-1" {
		t.Fatalf("cart id = %q, want cart-1", cartID)
	}
}

func TestRedisStoreUnknownToken(t *testing.T) {
	_, store := newRedisStore(t, time.Hour)
	_, found, err := store.CartID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatal("unknown token should not resolve")
	}
}

func TestRedisStoreDeleteSession(t *testing.T) {
	_, store := newRedisStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.NewSession(ctx, "cart-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := store.DeleteSession(ctx, token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, found, _ := store.CartID(ctx, token); found {
		t.Fatal("deleted token should not resolve")
	}
}

func TestRedisStoreSessionExpires(t *testing.T) {
	srv, store := newRedisStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.NewSession(ctx, "cart-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	srv.FastForward(2 * time.Minute)
	if _, found, _ := store.CartID(ctx, token); found {
		t.Fatal("expired token should not resolve")
	}
}
