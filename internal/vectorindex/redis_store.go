package vectorindex

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// embeddingKeyPrefix namespaces reference vectors in Redis.
const embeddingKeyPrefix = "embedding:"

// RedisStore loads and persists labelled reference vectors as Redis hashes.
// It deliberately avoids RediSearch's vector-similarity query DSL
// (FT.SEARCH with a VectorField), which go-redis does not model — it does
// plain HSET/HGETALL/SCAN key/value I/O, and MemoryIndex handles the
// similarity ranking in Go after RedisStore hands it the loaded set. That
// keeps Redis an optional durability layer rather than a query engine.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore constructs a go-redis client with bounded dial/read/write
// timeouts and pool size.
func NewRedisStore(addr, password string, db int, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     50,
		MinIdleConns: 5,
	})
	return &RedisStore{client: client, logger: logger}
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("vectorindex.RedisStore.Ping: %w", err)
	}
	return nil
}

// Put persists one reference vector as a hash under "embedding:<id>".
func (s *RedisStore) Put(ctx context.Context, ref Reference) error {
	key := embeddingKeyPrefix + ref.ID
	fields := map[string]interface{}{
		"label":     ref.Label,
		"category":  ref.Category,
		"severity":  ref.Severity,
		"embedding": encodeVector(ref.Vector),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("vectorindex.RedisStore.Put: %w", err)
	}
	return nil
}

// LoadAll scans all "embedding:*" keys and decodes them into References,
// the shape MemoryIndex.Load expects.
func (s *RedisStore) LoadAll(ctx context.Context) ([]Reference, error) {
	var refs []Reference
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, embeddingKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("vectorindex.RedisStore.LoadAll: scan: %w", err)
		}
		for _, key := range keys {
			vals, err := s.client.HGetAll(ctx, key).Result()
			if err != nil {
				s.logger.Warn("vectorindex: failed to read reference", zap.String("key", key), zap.Error(err))
				continue
			}
			ref, err := decodeReference(key, vals)
			if err != nil {
				s.logger.Warn("vectorindex: failed to decode reference", zap.String("key", key), zap.Error(err))
				continue
			}
			refs = append(refs, ref)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return refs, nil
}

func decodeReference(key string, vals map[string]string) (Reference, error) {
	id := key[len(embeddingKeyPrefix):]
	vec, err := decodeVector(vals["embedding"])
	if err != nil {
		return Reference{}, err
	}
	return Reference{
		ID:       id,
		Label:    vals["label"],
		Category: vals["category"],
		Severity: vals["severity"],
		Vector:   vec,
	}, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw string) ([]float32, error) {
	b := []byte(raw)
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vectorindex: embedding byte length %d not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// Client exposes the underlying connection so the shared result-cache tier
// can reuse it instead of opening a second pool to the same instance.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close releases the underlying client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
