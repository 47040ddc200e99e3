package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryRefreshTokenStoreConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRefreshTokenStore()

	if err := store.Save(ctx, "jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	owner, ok, err := store.Consume(ctx, " jti-1 ")
	if err != nil || !ok || owner != "u1" {
		t.Fatalf("expected owner u1, got %q ok=%v err=%v", owner, ok, err)
	}
	if _, ok, _ := store.Consume(ctx, "jti-1"); ok {
		t.Fatalf("expected second consume to fail")
	}
	if err := store.Save(ctx, "", "u1", time.Minute); err != nil {
		t.Fatalf("empty jti save should be no-op, got %v", err)
	}
}

func TestMemoryRefreshTokenStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memoryRefreshTokenStore{sessions: map[string]refreshSession{}, now: func() time.Time { return now }}

	_ = store.Save(ctx, "old", "u1", time.Minute)
	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Consume(ctx, "old"); ok {
		t.Fatalf("expected expired token to be rejected")
	}

	_ = store.Save(ctx, "stale", "u1", time.Minute)
	now = now.Add(2 * time.Minute)
	_ = store.Save(ctx, "fresh", "u2", time.Minute)
	if _, found := store.sessions["stale"]; found {
		t.Fatalf("expected expired sessions swept on save")
	}
}

func TestMemoryRefreshTokenStoreConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRefreshTokenStore()
	_ = store.Save(ctx, "shared", "u1", time.Minute)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := store.Consume(ctx, "shared"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

type mockRedisRefreshClient struct {
	data   map[string]string
	ttl    time.Duration
	setErr error
	delErr error
}

func (m *mockRedisRefreshClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	m.data[key], _ = value.(string)
	m.ttl = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisRefreshClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	delete(m.data, key)
	cmd.SetVal(v)
	return cmd
}

func TestRedisRefreshTokenStore(t *testing.T) {
	ctx := context.Background()
	client := &mockRedisRefreshClient{data: map[string]string{}}
	store := &redisRefreshTokenStore{client: client, prefix: "auth:refresh:"}

	if err := store.Save(ctx, " j1 ", "u1", 0); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if client.data["auth:refresh:j1"] != "u1" {
		t.Fatalf("unexpected redis contents %v", client.data)
	}
	if client.ttl != defaultRefreshStoreTTL {
		t.Fatalf("expected default ttl, got %v", client.ttl)
	}

	owner, ok, err := store.Consume(ctx, "j1")
	if err != nil || !ok || owner != "u1" {
		t.Fatalf("expected owner u1, got %q ok=%v err=%v", owner, ok, err)
	}
	if _, ok, err := store.Consume(ctx, "j1"); ok || err != nil {
		t.Fatalf("expected consumed token missing, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Consume(ctx, ""); ok || err != nil {
		t.Fatalf("expected empty jti ignored, got ok=%v err=%v", ok, err)
	}
}

func TestRedisRefreshTokenStoreErrors(t *testing.T) {
	ctx := context.Background()
	client := &mockRedisRefreshClient{
		data:   map[string]string{},
		setErr: errors.New("set failed"),
		delErr: errors.New("getdel failed"),
	}
	store := &redisRefreshTokenStore{client: client, prefix: "auth:refresh:"}

	if err := store.Save(ctx, "j2", "u1", time.Minute); err == nil {
		t.Fatalf("expected save error")
	}
	if _, _, err := store.Consume(ctx, "j2"); err == nil {
		t.Fatalf("expected consume error")
	}
}
