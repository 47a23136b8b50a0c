package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/pubsub"
	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

// Publica pelo broadcaster e espera o frame chegar no cliente WebSocket.
// Precisa de um Redis real; roda só com REDIS_ADDR definido.
func TestRedisSubscriber_FansOutToHub(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := "test:" + uuid.NewString()
	hub := NewHub(allowAll, zap.NewNop())
	StartRedisSubscriber(ctx, rdb, channel, hub, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()
	c := dial(t, srv)
	send(t, c, ClientMsg{Type: "subscribe"})

	ev := events.PredictionRecorded{EntryID: 42, Teams: "A vs B", Prediction: "1"}
	payload, _ := json.Marshal(ev)

	// a assinatura no Redis é assíncrona; espera o canal ter um ouvinte
	deadline := time.Now().Add(3 * time.Second)
	for {
		n, err := rdb.PubSubNumSub(ctx, channel).Result()
		if err == nil && n[channel] > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscriber never joined the channel")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := pubsub.NewRedisBroadcaster(rdb).Publish(ctx, channel, payload); err != nil {
		t.Fatalf("publish: %v", err)
	}
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := c.ReadJSON(&f); err != nil {
		t.Fatalf("no frame received from redis channel: %v", err)
	}
	if f.Type != "prediction_recorded" || f.Payload.EntryID != 42 {
		t.Fatalf("unexpected frame %+v", f)
	}
}
