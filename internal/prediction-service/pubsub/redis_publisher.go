package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/halftime-predictor/pkg/contracts/topics"
)

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	if channel == "" {
		channel = topics.PredictionHistoryChannel
	}
	return b.r.Publish(ctx, channel, payload).Err()
}
