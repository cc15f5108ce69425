package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vidtube/internal/domain"
)

// ChannelStatsCache guarda los contadores de suscripción por canal.
//
// Cada canal tiene una generación que Invalidate incrementa. Get devuelve la
// generación vigente y Set solo escribe si sigue siendo la misma, así un
// recálculo que empezó antes de un alta o baja no pisa la invalidación.
type ChannelStatsCache interface {
	Get(ctx context.Context, channelID string) (stats domain.ChannelStats, gen int64, ok bool, err error)
	Set(ctx context.Context, channelID string, gen int64, stats domain.ChannelStats) error
	Invalidate(ctx context.Context, channelIDs ...string) error
}

type memoryStatsEntry struct {
	stats     domain.ChannelStats
	expiresAt time.Time
}

type memoryChannelStatsCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryStatsEntry
	gens  map[string]int64
}

func NewMemoryChannelStatsCache(ttl time.Duration) ChannelStatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &memoryChannelStatsCache{
		ttl:   ttl,
		items: make(map[string]memoryStatsEntry),
		gens:  make(map[string]int64),
	}
}

func (c *memoryChannelStatsCache) Get(_ context.Context, channelID string) (domain.ChannelStats, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[channelID]
	entry, ok := c.items[channelID]
	if !ok {
		return domain.ChannelStats{}, gen, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, channelID)
		return domain.ChannelStats{}, gen, false, nil
	}
	return entry.stats, gen, true, nil
}

func (c *memoryChannelStatsCache) Set(_ context.Context, channelID string, gen int64, stats domain.ChannelStats) error {
	if strings.TrimSpace(channelID) == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[channelID] != gen {
		return nil
	}
	c.items[channelID] = memoryStatsEntry{stats: stats, expiresAt: time.Now().UTC().Add(c.ttl)}
	return nil
}

func (c *memoryChannelStatsCache) Invalidate(_ context.Context, channelIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range channelIDs {
		delete(c.items, id)
		c.gens[id]++
	}
	return nil
}

// KEYS[1] = stats, KEYS[2] = generación; ARGV[1] = generación leída,
// ARGV[2] = payload, ARGV[3] = ttl en ms. Devuelve 1 si escribió.
const redisStatsSetScript = `
local cur = redis.call("GET", KEYS[2])
if not cur then
  cur = "0"
end
if cur ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

// KEYS en pares (stats, generación) por canal.
const redisStatsInvalidateScript = `
for i = 1, #KEYS, 2 do
  redis.call("DEL", KEYS[i])
  redis.call("INCR", KEYS[i + 1])
end
return 1
`

// redisKV es el subconjunto de *redis.Client que usa el cache.
type redisKV interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

const redisOpTimeout = 500 * time.Millisecond

type redisChannelStatsCache struct {
	client redisKV
	ttl    time.Duration
	prefix string
}

func NewRedisChannelStatsCache(client *redis.Client, ttl time.Duration) ChannelStatsCache {
	if client == nil {
		return nil
	}
	return newRedisChannelStatsCache(client, ttl)
}

func newRedisChannelStatsCache(client redisKV, ttl time.Duration) *redisChannelStatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisChannelStatsCache{
		client: client,
		ttl:    ttl,
		prefix: "channel:stats:",
	}
}

func (c *redisChannelStatsCache) statsKey(channelID string) string { return c.prefix + channelID }
func (c *redisChannelStatsCache) genKey(channelID string) string   { return c.prefix + channelID + ":gen" }

func (c *redisChannelStatsCache) Get(ctx context.Context, channelID string) (domain.ChannelStats, int64, bool, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return domain.ChannelStats{}, 0, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	vals, err := c.client.MGet(ctx, c.statsKey(channelID), c.genKey(channelID)).Result()
	if err != nil {
		return domain.ChannelStats{}, 0, false, err
	}
	if len(vals) != 2 {
		return domain.ChannelStats{}, 0, false, fmt.Errorf("unexpected mget reply length %d", len(vals))
	}

	var gen int64
	if raw, ok := vals[1].(string); ok {
		gen, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.ChannelStats{}, 0, false, fmt.Errorf("parse stats generation: %w", err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return domain.ChannelStats{}, gen, false, nil
	}
	var stats domain.ChannelStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return domain.ChannelStats{}, gen, false, err
	}
	return stats, gen, true, nil
}

func (c *redisChannelStatsCache) Set(ctx context.Context, channelID string, gen int64, stats domain.ChannelStats) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return c.client.Eval(ctx, redisStatsSetScript,
		[]string{c.statsKey(channelID), c.genKey(channelID)},
		strconv.FormatInt(gen, 10), string(payload), c.ttl.Milliseconds(),
	).Err()
}

func (c *redisChannelStatsCache) Invalidate(ctx context.Context, channelIDs ...string) error {
	keys := make([]string, 0, 2*len(channelIDs))
	for _, id := range channelIDs {
		if id = strings.TrimSpace(id); id != "" {
			keys = append(keys, c.statsKey(id), c.genKey(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return c.client.Eval(ctx, redisStatsInvalidateScript, keys).Err()
}
