package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-archiver/consumer"
	"github.com/radieske/halftime-predictor/internal/prediction-archiver/repository"
	"github.com/radieske/halftime-predictor/internal/shared/config"
	"github.com/radieske/halftime-predictor/internal/shared/db"
	"github.com/radieske/halftime-predictor/internal/shared/kafka"
	"github.com/radieske/halftime-predictor/internal/shared/logger"
	"github.com/radieske/halftime-predictor/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "prediction-archiver"
	}
	log := logger.Must(logger.New(cfg.ServiceName, cfg.Env))
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("postgres schema", zap.Error(err))
	}

	// Consumer group prediction-archiver no tópico prediction_recorded
	reader := kafka.NewReader(cfg.Brokers(), cfg.TopicPredictionRecorded, "prediction-archiver")
	defer reader.Close()

	var dlq *kafkago.Writer
	if cfg.TopicPredictionRecordedDLQ != "" {
		dlq = kafka.NewWriter(cfg.Brokers(), cfg.TopicPredictionRecordedDLQ)
		defer dlq.Close()
	}

	// Métricas Prometheus para monitoramento do arquivamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "prediction_archiver_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "prediction_archiver_db_writes_total", Help: "entradas arquivadas"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "prediction_archiver_duplicates_total", Help: "reentregas ignoradas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "prediction_archiver_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, duplicates, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repo,
		Retries:     3,
		Backoff:     300 * time.Millisecond,
		OnConsumed:  func() { consumed.Inc() },
		OnPersist:   func() { persisted.Inc() },
		OnDuplicate: func() { duplicates.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if dlq != nil {
		proc.DLQ = dlq
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, metrics.Check{Name: "postgres", Fn: repo.Ping})
	defer metricsSrv.Close()

	log.Info("prediction-archiver started", zap.String("consume", cfg.TopicPredictionRecorded))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("prediction-archiver stopped")
}
