package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// testRedisClient returns a client for the test Redis, skipping when it is
// unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestSessionCreateLookupDestroy(t *testing.T) {
	store := NewStore(testRedisClient(t), 0)
	ctx := context.Background()

	id, err := store.Create(ctx, "user_123")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(id) != idLength*2 {
		t.Fatalf("id length = %d, want %d", len(id), idLength*2)
	}

	userID, err := store.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if userID != "user_123" {
		t.Fatalf("userID = %q, want %q", userID, "user_123")
	}

	if err := store.Destroy(ctx, id); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if _, err := store.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup after destroy = %v, want ErrNotFound", err)
	}
}

func TestSessionLookupUnknown(t *testing.T) {
	store := NewStore(testRedisClient(t), 0)
	if _, err := store.Lookup(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup = %v, want ErrNotFound", err)
	}
}

func TestSessionCreateRequiresUser(t *testing.T) {
	store := NewStore(nil, 0)
	if _, err := store.Create(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
	if _, err := store.Lookup(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup(\"\") = %v, want ErrNotFound", err)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	a, err := generateID()
	if err != nil {
		t.Fatalf("generateID: %v", err)
	}
	b, err := generateID()
	if err != nil {
		t.Fatalf("generateID: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct ids")
	}
}
