package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
)

// Recorder acrescenta previsões bem-sucedidas no topo do histórico.
type Recorder struct {
	store Store
	log   *zap.Logger
	now   func() time.Time

	// Callback opcional para métricas, chamado só depois do commit
	OnRecorded func(Entry)
}

func NewRecorder(store Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, log: log, now: time.Now}
}

// WithClock troca o relógio (testes)
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record grava uma nova entrada na frente da lista.
// O id é o instante em ms, empurrado para newest+1 quando colide ou o relógio volta.
// Qualquer erro do Store vem envolvido em ErrPersistence.
func (r *Recorder) Record(ctx context.Context, rec match.Record, prediction string) (Entry, error) {
	if prediction == "" {
		return Entry{}, ErrEmptyPrediction
	}

	var entry Entry
	err := r.store.Update(ctx, func(cur []Entry) ([]Entry, error) {
		now := r.now()
		id := now.UnixMilli()
		if len(cur) > 0 && id <= cur[0].ID {
			id = cur[0].ID + 1
		}
		entry = Entry{
			ID:         id,
			Date:       string(rec.Date),
			Teams:      rec.TeamsLabel(),
			Prediction: prediction,
			Timestamp:  now.UTC().Format(isoMillis),
		}
		next := make([]Entry, 0, len(cur)+1)
		next = append(next, entry)
		return append(next, cur...), nil
	})
	if err != nil {
		r.log.Error("history record failed", zap.String("teams", rec.TeamsLabel()), zap.Error(err))
		return Entry{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.log.Info("history entry recorded", zap.Int64("id", entry.ID), zap.String("teams", entry.Teams))
	if r.OnRecorded != nil {
		r.OnRecorded(entry)
	}
	return entry, nil
}

// List devolve o histórico, mais recente primeiro.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	entries, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return entries, nil
}
