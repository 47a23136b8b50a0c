package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

// MockReader entrega as mensagens da fila e cancela o contexto quando ela esvazia
type MockReader struct {
	mu        sync.Mutex
	Msgs      []kafka.Message
	Committed []int64
	Cancel    context.CancelFunc
}

func (m *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.Msgs) == 0 {
		m.mu.Unlock()
		m.Cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := m.Msgs[0]
	m.Msgs = m.Msgs[1:]
	m.mu.Unlock()
	return msg, nil
}

func (m *MockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.Committed = append(m.Committed, msg.Offset)
	}
	return nil
}

type MockRepo struct {
	InsertFunc func(ctx context.Context, e events.PredictionRecorded) (bool, error)
	Calls      int
}

func (m *MockRepo) InsertEntry(ctx context.Context, e events.PredictionRecorded) (bool, error) {
	m.Calls++
	return m.InsertFunc(ctx, e)
}

type MockWriter struct {
	Msgs  []kafka.Message
	Calls int
	Err   error
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	m.Msgs = append(m.Msgs, msgs...)
	return nil
}

func message(offset int64, v any) kafka.Message {
	b, _ := json.Marshal(v)
	return kafka.Message{Offset: offset, Value: b}
}

func validEvent(id int64) events.PredictionRecorded {
	return events.PredictionRecorded{EventID: "e", EntryID: id, Teams: "A vs B", Prediction: "2.5 Üst", RecordedAt: "2024-03-10T12:00:00.000Z"}
}

func run(t *testing.T, p *Processor, r *MockReader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.Cancel = cancel
	p.Reader = r
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled on drain, got %v", err)
	}
}

func TestProcessor_ArchivesAndCommits(t *testing.T) {
	var persisted, duplicates int
	seen := map[int64]bool{}
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) {
		if seen[e.EntryID] {
			return false, nil
		}
		seen[e.EntryID] = true
		return true, nil
	}}
	r := &MockReader{Msgs: []kafka.Message{
		message(1, validEvent(100)),
		message(2, validEvent(101)),
		message(3, validEvent(100)), // reentrega
	}}
	p := &Processor{
		Repo:        repo,
		OnPersist:   func() { persisted++ },
		OnDuplicate: func() { duplicates++ },
	}

	run(t, p, r)

	if persisted != 2 || duplicates != 1 {
		t.Errorf("expected 2 persisted and 1 duplicate, got %d/%d", persisted, duplicates)
	}
	if len(r.Committed) != 3 {
		t.Errorf("expected every offset committed, got %v", r.Committed)
	}
}

func TestProcessor_PoisonMessagesGoToDLQ(t *testing.T) {
	stages := map[string]int{}
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) { return true, nil }}
	dlq := &MockWriter{}
	r := &MockReader{Msgs: []kafka.Message{
		{Offset: 1, Value: []byte("not json")},
		message(2, events.PredictionRecorded{EntryID: 0, Prediction: "x"}),
		message(3, events.PredictionRecorded{EntryID: 5}),
	}}
	p := &Processor{Repo: repo, DLQ: dlq, OnError: func(s string) { stages[s]++ }}

	run(t, p, r)

	if repo.Calls != 0 {
		t.Errorf("invalid events must not reach the database, got %d calls", repo.Calls)
	}
	if len(dlq.Msgs) != 3 || stages["decode"] != 3 {
		t.Errorf("expected 3 dead letters, got %d (stages %v)", len(dlq.Msgs), stages)
	}
	if len(dlq.Msgs) > 0 && len(dlq.Msgs[0].Headers) == 0 {
		t.Error("dead letter should carry the error header")
	}
	if len(r.Committed) != 3 {
		t.Errorf("poison messages are committed, got %v", r.Committed)
	}
}

func TestProcessor_RetriesThenDeadLetters(t *testing.T) {
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) {
		return false, errors.New("connection refused")
	}}
	dlq := &MockWriter{}
	var dbErrors int
	r := &MockReader{Msgs: []kafka.Message{message(1, validEvent(7))}}
	p := &Processor{
		Repo:    repo,
		DLQ:     dlq,
		Retries: 2,
		Backoff: time.Millisecond,
		OnError: func(s string) {
			if s == "db_insert" {
				dbErrors++
			}
		},
	}

	run(t, p, r)

	if repo.Calls != 3 {
		t.Errorf("expected 1 attempt + 2 retries, got %d", repo.Calls)
	}
	if dbErrors != 1 || len(dlq.Msgs) != 1 {
		t.Errorf("expected one db_insert error and one dead letter, got %d/%d", dbErrors, len(dlq.Msgs))
	}
}

func TestProcessor_RecoversAfterTransientFailure(t *testing.T) {
	fails := 1
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) {
		if fails > 0 {
			fails--
			return false, errors.New("deadlock detected")
		}
		return true, nil
	}}
	dlq := &MockWriter{}
	persisted := 0
	r := &MockReader{Msgs: []kafka.Message{message(1, validEvent(9))}}
	p := &Processor{Repo: repo, DLQ: dlq, Retries: 3, Backoff: time.Millisecond, OnPersist: func() { persisted++ }}

	run(t, p, r)

	if persisted != 1 || len(dlq.Msgs) != 0 {
		t.Errorf("expected recovery without dead letter, got persisted=%d dlq=%d", persisted, len(dlq.Msgs))
	}
}

func TestProcessor_BrokenDLQLeavesOffsetUncommitted(t *testing.T) {
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) { return true, nil }}
	dlq := &MockWriter{Err: errors.New("dlq leader not available")}
	stages := map[string]int{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := &MockReader{Msgs: []kafka.Message{{Offset: 4, Value: []byte("not json")}, message(5, validEvent(1))}, Cancel: cancel}
	p := &Processor{
		Log:     zap.NewNop(),
		Reader:  r,
		Repo:    repo,
		DLQ:     dlq,
		Retries: 2,
		Backoff: time.Millisecond,
		OnError: func(s string) { stages[s]++ },
	}

	err := p.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("expected processor to stop on dlq failure, got %v", err)
	}
	if !errors.Is(err, dlq.Err) {
		t.Errorf("expected dlq cause in error chain, got %v", err)
	}
	if len(r.Committed) != 0 {
		t.Errorf("poison message must stay uncommitted, got %v", r.Committed)
	}
	if dlq.Calls != 3 || stages["dlq"] != 1 {
		t.Errorf("expected 3 dlq attempts and one dlq error, got %d/%d", dlq.Calls, stages["dlq"])
	}
	if repo.Calls != 0 {
		t.Errorf("processing must stop at the failed message, got %d inserts", repo.Calls)
	}
}

func TestProcessor_NoDLQCommitsPoison(t *testing.T) {
	repo := &MockRepo{InsertFunc: func(ctx context.Context, e events.PredictionRecorded) (bool, error) { return true, nil }}
	r := &MockReader{Msgs: []kafka.Message{{Offset: 1, Value: []byte("not json")}}}
	p := &Processor{Repo: repo}

	run(t, p, r)

	if len(r.Committed) != 1 {
		t.Errorf("without dlq the poison message is dropped and committed, got %v", r.Committed)
	}
}
