package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os contadores do pipeline. Em produção usa prometheus.DefaultRegisterer,
// nos testes um prometheus.NewRegistry() isolado.
type Metrics struct {
	Submissions       prometheus.Counter
	Failures          *prometheus.CounterVec
	Recorded          prometheus.Counter
	InferenceDuration prometheus.Histogram
	NotifyErrors      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounter(prometheus.CounterOpts{
			Name: "prediction_pipeline_submissions_total",
			Help: "submissões recebidas pelo pipeline",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_pipeline_failures_total",
			Help: "falhas por estágio do pipeline",
		}, []string{"stage"}),
		Recorded: f.NewCounter(prometheus.CounterOpts{
			Name: "prediction_history_entries_recorded_total",
			Help: "entradas gravadas no histórico",
		}),
		InferenceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_inference_duration_seconds",
			Help:    "latência da chamada ao endpoint de inferência",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		NotifyErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_pipeline_notify_errors_total",
			Help: "falhas nas notificações pós-commit (kafka, pubsub)",
		}, []string{"sink"}),
	}
}
