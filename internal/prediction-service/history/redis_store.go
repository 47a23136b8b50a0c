package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore mantém o slot como uma única chave com o array JSON.
// Update usa WATCH/MULTI (compare-and-swap otimista) e repete em caso de conflito.
type RedisStore struct {
	rdb        *redis.Client
	key        string
	maxRetries int
}

func NewRedisStore(rdb *redis.Client, key string, maxRetries int) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &RedisStore{rdb: rdb, key: key, maxRetries: maxRetries}
}

func (s *RedisStore) Load(ctx context.Context) ([]Entry, error) {
	return s.get(ctx, s.rdb)
}

func (s *RedisStore) Update(ctx context.Context, fn UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		cur, err := s.get(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		// só executa se a chave não mudou desde o WATCH
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, b, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: key %s after %d attempts", ErrConflict, s.key, s.maxRetries)
}

func (s *RedisStore) get(ctx context.Context, c redis.Cmdable) ([]Entry, error) {
	b, err := c.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeEntries(b)
}
