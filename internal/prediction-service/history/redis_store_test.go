package history

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Precisa de um Redis real; roda só com REDIS_ADDR definido.
func newTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	key := fmt.Sprintf("test:predictionHistory:%s", uuid.NewString())
	t.Cleanup(func() {
		rdb.Del(context.Background(), key)
		rdb.Close()
	})
	return rdb, key
}

func TestRedisStore_ConcurrentRecords(t *testing.T) {
	rdb, key := newTestRedis(t)
	r := NewRecorder(NewRedisStore(rdb, key, 100), zap.NewNop())

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Record(context.Background(), sampleRecord(), fmt.Sprintf("p%d", i)); err != nil {
				t.Errorf("record %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	list, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != n {
		t.Fatalf("expected %d entries, got %d", n, len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].ID >= list[i-1].ID {
			t.Errorf("ids out of order at %d: %d >= %d", i, list[i].ID, list[i-1].ID)
		}
	}
}

func TestRedisStore_MissingKeyIsEmpty(t *testing.T) {
	rdb, key := newTestRedis(t)
	list, err := NewRedisStore(rdb, key, 0).Load(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
}
