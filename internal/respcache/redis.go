package respcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"maploader/internal/resource"
)

// RedisStore shares cached responses across SDK processes, keyed by
// resource URL. Entries are JSON snapshots with a server-side TTL so
// abandoned tiles age out without a sweeper.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

const defaultRedisTTL = 24 * time.Hour

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisStoreWithClient wires an existing client; tests pair it with
// miniredis.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

type storedResponse struct {
	Status   uint8     `json:"status"`
	Message  string    `json:"message,omitempty"`
	Modified time.Time `json:"modified,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Etag     string    `json:"etag,omitempty"`
	Data     []byte    `json:"data,omitempty"`
}

func keyFor(url string) string {
	return "resource:" + url
}

func (s *RedisStore) Get(ctx context.Context, url string) (resource.Response, bool, error) {
	data, err := s.client.Get(ctx, keyFor(url)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return resource.Response{}, false, nil
		}
		return resource.Response{}, false, fmt.Errorf("redis get error: %w", err)
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return resource.Response{}, false, fmt.Errorf("decode cached response: %w", err)
	}
	return resource.Response{
		Status:   resource.Status(stored.Status),
		Message:  stored.Message,
		Modified: stored.Modified,
		Expires:  stored.Expires,
		Etag:     stored.Etag,
		Data:     stored.Data,
	}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, url string, resp resource.Response) error {
	data, err := json.Marshal(storedResponse{
		Status:   uint8(resp.Status),
		Message:  resp.Message,
		Modified: resp.Modified,
		Expires:  resp.Expires,
		Etag:     resp.Etag,
		Data:     resp.Data,
	})
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}
	if err := s.client.Set(ctx, keyFor(url), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, url string) error {
	if err := s.client.Del(ctx, keyFor(url)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
