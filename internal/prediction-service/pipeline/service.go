package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/history"
	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
	"github.com/radieske/halftime-predictor/internal/prediction-service/predictor"
	"github.com/radieske/halftime-predictor/internal/prediction-service/prompt"
	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

// State é o estado de uma submissão. O pipeline não guarda estado entre submissões.
type State string

const (
	StateIdle      State = "idle"
	StateBuilding  State = "building"
	StateSending   State = "sending"
	StateSuccess   State = "success"
	StateRecording State = "recording"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

type Generator interface {
	Generate(ctx context.Context, promptText string) (*predictor.GenerateResponse, error)
}

type Recorder interface {
	Record(ctx context.Context, rec match.Record, prediction string) (history.Entry, error)
}

// EventPublisher recebe o evento prediction_recorded (Kafka em produção)
type EventPublisher interface {
	PublishPredictionRecorded(ctx context.Context, e events.PredictionRecorded) error
}

// Broadcaster publica o mesmo evento no Redis Pub/Sub para o feed WebSocket
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Result de uma submissão concluída (estado Done)
type Result struct {
	Prediction string        `json:"prediction"`
	Entry      history.Entry `json:"entry"`
	States     []State       `json:"-"`
}

// Service executa Building → Sending → Success → Recording → Done.
// Qualquer erro interrompe o fluxo (fail closed) e nada é gravado.
type Service struct {
	gen     Generator
	rec     Recorder
	log     *zap.Logger
	metrics *Metrics

	// Notificações pós-commit; opcionais. Falhas só geram log.
	Publisher     EventPublisher
	Broadcaster   Broadcaster
	Channel       string
	NotifyTimeout time.Duration

	notifying sync.WaitGroup
}

func NewService(gen Generator, rec Recorder, log *zap.Logger, m *Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, rec: rec, log: log, metrics: m, NotifyTimeout: 2 * time.Second}
}

// Submit roda o pipeline para um Match Record.
// O prazo vem do ctx do chamador; sem prazo a chamada de inferência pode ficar pendente.
func (s *Service) Submit(ctx context.Context, rec match.Record) (*Result, error) {
	if s.metrics != nil {
		s.metrics.Submissions.Inc()
	}
	res := &Result{States: []State{StateIdle}}
	log := s.log.With(zap.String("teams", rec.TeamsLabel()))

	s.enter(log, res, StateBuilding)
	text := prompt.Build(rec)

	s.enter(log, res, StateSending)
	start := time.Now()
	resp, err := s.gen.Generate(ctx, text)
	if s.metrics != nil {
		s.metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, s.fail(log, res, "sending", err)
	}
	prediction, err := predictor.ExtractText(resp)
	if err != nil {
		return nil, s.fail(log, res, "extracting", err)
	}

	s.enter(log, res, StateSuccess)
	res.Prediction = prediction

	s.enter(log, res, StateRecording)
	entry, err := s.rec.Record(ctx, rec, prediction)
	if err != nil {
		return nil, s.fail(log, res, "recording", err)
	}
	res.Entry = entry

	s.enter(log, res, StateDone)
	log.Info("prediction completed", zap.Int64("entry_id", entry.ID), zap.Duration("elapsed", time.Since(start)))

	s.notifyAsync(ctx, rec, entry)
	return res, nil
}

// Wait bloqueia até terminarem as notificações pós-commit em andamento (shutdown e testes)
func (s *Service) Wait() {
	s.notifying.Wait()
}

func (s *Service) enter(log *zap.Logger, res *Result, st State) {
	res.States = append(res.States, st)
	log.Debug("pipeline state", zap.String("state", string(st)))
}

func (s *Service) fail(log *zap.Logger, res *Result, stage string, err error) error {
	res.States = append(res.States, StateFailed)
	if s.metrics != nil {
		s.metrics.Failures.WithLabelValues(stage).Inc()
	}
	log.Warn("prediction failed",
		zap.String("stage", stage),
		zap.String("kind", string(predictor.KindOf(err))),
		zap.Error(err),
	)
	return &StageError{Stage: stage, Err: err}
}

// notifyAsync roda depois que o histórico já está gravado: erro aqui não desfaz a submissão
// e a resposta não espera pelos sinks. O contexto é desacoplado do request para não
// perder o evento se o cliente desconectar.
func (s *Service) notifyAsync(ctx context.Context, rec match.Record, e history.Entry) {
	if s.Publisher == nil && s.Broadcaster == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		s.notify(ctx, rec, e)
	}()
}

func (s *Service) notify(ctx context.Context, rec match.Record, e history.Entry) {
	ctx, cancel := context.WithTimeout(ctx, s.NotifyTimeout)
	defer cancel()

	ev := events.PredictionRecorded{
		EntryID:    e.ID,
		League:     string(rec.League),
		MatchDate:  e.Date,
		Teams:      e.Teams,
		HalfTime:   string(rec.HalfScore),
		Prediction: e.Prediction,
		RecordedAt: e.Timestamp,
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishPredictionRecorded(ctx, ev); err != nil {
			s.notifyFailed("kafka", e, err)
		}
	}
	if s.Broadcaster != nil {
		b, _ := json.Marshal(ev)
		if err := s.Broadcaster.Publish(ctx, s.Channel, b); err != nil {
			s.notifyFailed("pubsub", e, err)
		}
	}
}

func (s *Service) notifyFailed(sink string, e history.Entry, err error) {
	s.log.Warn("post-commit notification failed", zap.String("sink", sink), zap.Int64("entry_id", e.ID), zap.Error(err))
	if s.metrics != nil {
		s.metrics.NotifyErrors.WithLabelValues(sink).Inc()
	}
}
