package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	sharedkafka "github.com/radieske/halftime-predictor/internal/shared/kafka"
	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer sharedkafka.MessageWriter
	Topic  string
}

func NewKafkaPublisher(w *sharedkafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// PublishPredictionRecorded gera event_id e timestamp; a chave é o entry_id
// para que reentregas do mesmo registro caiam na mesma partição.
func (p *KafkaPublisher) PublishPredictionRecorded(ctx context.Context, e events.PredictionRecorded) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal prediction_recorded: %w", err)
	}
	return sharedkafka.WriteJSON(ctx, p.Writer, strconv.FormatInt(e.EntryID, 10), b)
}
