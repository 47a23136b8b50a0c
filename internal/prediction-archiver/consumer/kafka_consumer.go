package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Repository interface {
	InsertEntry(ctx context.Context, e events.PredictionRecorded) (bool, error)
}

var errInvalidEvent = errors.New("prediction_recorded without entry_id or prediction")

// Processor consome prediction_recorded do Kafka e arquiva no Postgres.
// Offset só é commitado depois de gravar ou mandar para a DLQ. Se a DLQ também falhar,
// Run para sem commitar e a mensagem volta no próximo start.
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   Repository
	DLQ    MessageWriter // opcional

	Retries int           // tentativas de escrita antes da DLQ
	Backoff time.Duration // base do backoff linear

	OnConsumed  func()       // métricas (counter++)
	OnPersist   func()       // métricas
	OnDuplicate func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("offset %d left uncommitted: %w", m.Offset, err)
		}

		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("commit")
		}
	}
}

func (p *Processor) handle(ctx context.Context, m kafka.Message) error {
	var ev events.PredictionRecorded
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("decode")
		return p.deadLetter(ctx, m, err)
	}
	if ev.EntryID == 0 || ev.Prediction == "" {
		p.fail("decode")
		return p.deadLetter(ctx, m, errInvalidEvent)
	}

	var (
		inserted bool
		err      error
	)
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			sleep(ctx, time.Duration(attempt)*p.Backoff)
		}
		inserted, err = p.Repo.InsertEntry(ctx, ev)
		if err == nil || ctx.Err() != nil {
			break
		}
		p.Log.Warn("db insert failed", zap.Int64("entry_id", ev.EntryID), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.fail("db_insert")
		return p.deadLetter(ctx, m, err)
	}

	if !inserted {
		p.Log.Debug("entry already archived", zap.Int64("entry_id", ev.EntryID))
		if p.OnDuplicate != nil {
			p.OnDuplicate()
		}
		return nil
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
	return nil
}

// deadLetter tenta a DLQ com o mesmo backoff das escritas no banco.
// Sem DLQ configurada a mensagem só fica no log.
func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) error {
	if p.DLQ == nil {
		p.Log.Warn("message dropped, no dlq configured", zap.Int64("offset", m.Offset), zap.Error(cause))
		return nil
	}
	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
		},
	}
	var err error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			sleep(ctx, time.Duration(attempt)*p.Backoff)
		}
		if err = p.DLQ.WriteMessages(ctx, msg); err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		p.Log.Error("dlq write failed", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("dlq")
		return fmt.Errorf("dead letter: %w", err)
	}
	return nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
