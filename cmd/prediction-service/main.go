package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/halftime-predictor/internal/prediction-service/history"
	httpapi "github.com/radieske/halftime-predictor/internal/prediction-service/http"
	"github.com/radieske/halftime-predictor/internal/prediction-service/pipeline"
	"github.com/radieske/halftime-predictor/internal/prediction-service/predictor"
	"github.com/radieske/halftime-predictor/internal/prediction-service/producer"
	"github.com/radieske/halftime-predictor/internal/prediction-service/pubsub"
	"github.com/radieske/halftime-predictor/internal/prediction-service/ws"
	"github.com/radieske/halftime-predictor/internal/shared/cache"
	"github.com/radieske/halftime-predictor/internal/shared/config"
	"github.com/radieske/halftime-predictor/internal/shared/kafka"
	"github.com/radieske/halftime-predictor/internal/shared/logger"
	"github.com/radieske/halftime-predictor/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "prediction-service"
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis: obrigatório quando o histórico mora nele, opcional (feed ao vivo) com backend=file
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		if cfg.HistoryBackend != "file" {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		log.Warn("redis unavailable, live feed disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	var store history.Store
	switch cfg.HistoryBackend {
	case "file":
		store = history.NewFileStore(cfg.HistoryFile)
		log.Info("history backend: file", zap.String("path", cfg.HistoryFile))
	default:
		store = history.NewRedisStore(redisClient, cfg.HistoryKey, cfg.HistoryRetries)
		log.Info("history backend: redis", zap.String("key", cfg.HistoryKey))
	}

	m := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	recorder := history.NewRecorder(store, log)
	recorder.OnRecorded = func(history.Entry) { m.Recorded.Inc() }

	// endpoint lido uma única vez aqui e injetado no cliente
	if cfg.InferenceURL == "" || cfg.InferenceAPIKey == "" {
		log.Warn("inference endpoint not configured; submissions will fail with request_construction")
	}
	client := predictor.New(
		predictor.Endpoint{BaseURL: cfg.InferenceURL, APIKey: cfg.InferenceAPIKey},
		predictor.WithLogger(log),
		predictor.WithLegacyURL(cfg.LegacyPredictURL),
	)

	svc := pipeline.NewService(client, recorder, log, m)

	// Kafka: evento prediction_recorded para o archiver; desligado com KAFKA_BROKERS vazio
	if cfg.KafkaEnabled() {
		writer := kafka.NewWriter(cfg.Brokers(), cfg.TopicPredictionRecorded)
		defer writer.Close()
		svc.Publisher = producer.NewKafkaPublisher(writer, cfg.TopicPredictionRecorded)
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicPredictionRecorded))
	} else {
		log.Info("kafka disabled, prediction_recorded events not published")
	}

	api := &httpapi.API{
		Log:            log,
		Pipeline:       svc,
		History:        recorder,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if client.LegacyEnabled() {
		api.Legacy = client
		log.Info("legacy /predict path enabled", zap.String("url", cfg.LegacyPredictURL))
	}

	checks := []metrics.Check{}
	if redisClient != nil {
		svc.Broadcaster = pubsub.NewRedisBroadcaster(redisClient)
		svc.Channel = cfg.RedisPubSubChannel

		hub := ws.NewHub(ws.AllowOrigins(cfg.AllowedOrigins), log)
		ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)
		api.WS = hub.HandleWS

		checks = append(checks, metrics.Check{Name: "redis", Fn: redisPing(redisClient)})
	}

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, checks...)

	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("prediction-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		err := apiSrv.Shutdown(shutdownCtx)
		// notificações pós-commit ainda em voo terminam antes de fechar writer e redis
		svc.Wait()
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("api", zap.Error(err))
	}
	log.Info("prediction-service stopped")
}

func redisPing(r *redis.Client) metrics.HealthFunc {
	return func(ctx context.Context) error { return r.Ping(ctx).Err() }
}
