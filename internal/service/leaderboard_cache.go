package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"beauty-api/internal/domain"
)

// LeaderboardCache guarda resultados de consultas por clave de periodo.
// Set recibe la generación leída antes de consultar; si hubo un Invalidate en medio no guarda nada.
type LeaderboardCache interface {
	Generation(ctx context.Context) string
	Get(ctx context.Context, key string) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, gen, key string, entries []domain.LeaderboardEntry, ttl time.Duration)
	Invalidate(ctx context.Context)
}

type memoryLeaderboardCache struct {
	mu    sync.Mutex
	gen   uint64
	items map[string]cachedEntries
}

type cachedEntries struct {
	entries   []domain.LeaderboardEntry
	expiresAt time.Time
}

func NewMemoryLeaderboardCache() LeaderboardCache {
	return &memoryLeaderboardCache{items: make(map[string]cachedEntries)}
}

func (c *memoryLeaderboardCache) Generation(context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strconv.FormatUint(c.gen, 10)
}

func (c *memoryLeaderboardCache) Get(_ context.Context, key string) ([]domain.LeaderboardEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return item.entries, true
}

func (c *memoryLeaderboardCache) Set(_ context.Context, gen, key string, entries []domain.LeaderboardEntry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != strconv.FormatUint(c.gen, 10) {
		return
	}
	c.items[key] = cachedEntries{entries: entries, expiresAt: time.Now().Add(ttl)}
}

func (c *memoryLeaderboardCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.items = make(map[string]cachedEntries)
}

type redisCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// redisLeaderboardCache usa un contador de generación para invalidar todas las claves de una vez.
type redisLeaderboardCache struct {
	client redisCacheClient
	prefix string
}

func NewRedisLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &redisLeaderboardCache{client: client, prefix: "leaderboard:cache:"}
}

func (c *redisLeaderboardCache) Generation(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.generation(ctx)
}

func (c *redisLeaderboardCache) generation(ctx context.Context) string {
	gen, err := c.client.Get(ctx, c.prefix+"gen").Result()
	if err != nil {
		return "0"
	}
	return gen
}

func (c *redisLeaderboardCache) Get(ctx context.Context, key string) ([]domain.LeaderboardEntry, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+c.generation(ctx)+":"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set escribe bajo la generación capturada; una generación vieja queda en una clave que nadie lee.
func (c *redisLeaderboardCache) Set(ctx context.Context, gen, key string, entries []domain.LeaderboardEntry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.prefix+gen+":"+key, raw, ttl).Err()
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Incr(ctx, c.prefix+"gen").Err()
}

