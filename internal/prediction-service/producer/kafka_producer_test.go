package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

type MockWriter struct {
	Msgs []kafka.Message
	Err  error
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Msgs = append(m.Msgs, msgs...)
	return m.Err
}

func TestPublishPredictionRecorded(t *testing.T) {
	w := &MockWriter{}
	p := &KafkaPublisher{Writer: w, Topic: "prediction_recorded"}

	err := p.PublishPredictionRecorded(context.Background(), events.PredictionRecorded{EntryID: 1710072000000, Teams: "A vs B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.Msgs))
	}
	m := w.Msgs[0]
	if string(m.Key) != "1710072000000" {
		t.Errorf("expected entry id as key, got %q", m.Key)
	}

	var ev events.PredictionRecorded
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Errorf("expected uuid event id, got %q", ev.EventID)
	}
	if ev.TsUnixMs == 0 || ev.Teams != "A vs B" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestPublishPredictionRecorded_KeepsEventID(t *testing.T) {
	w := &MockWriter{}
	p := &KafkaPublisher{Writer: w}
	_ = p.PublishPredictionRecorded(context.Background(), events.PredictionRecorded{EventID: "fixed"})

	var ev events.PredictionRecorded
	_ = json.Unmarshal(w.Msgs[0].Value, &ev)
	if ev.EventID != "fixed" {
		t.Errorf("expected event id kept, got %q", ev.EventID)
	}
}

func TestPublishPredictionRecorded_WriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{Writer: &MockWriter{Err: boom}}
	if err := p.PublishPredictionRecorded(context.Background(), events.PredictionRecorded{}); !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
}
