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
	"go.uber.org/zap"

	simulator "github.com/radieske/halftime-predictor/internal/inference-simulator"
	"github.com/radieske/halftime-predictor/internal/shared/config"
	"github.com/radieske/halftime-predictor/internal/shared/logger"
	"github.com/radieske/halftime-predictor/internal/shared/metrics"
)

var requests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "inference_simulator_requests_total",
	Help: "requisições atendidas por rota e modo",
}, []string{"route", "mode"})

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "inference-simulator"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(requests)

	s := simulator.NewServer(log, cfg.SimulatorMode)
	s.OnRequest = func(route, mode string) { requests.WithLabelValues(route, mode).Inc() }

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.HTTPPort), Handler: s.Router()}
	go func() {
		log.Info("inference simulator running",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.SimulatorMode),
			zap.String("paths", "/v1beta/models/{model}:generateContent,/predict"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
