package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/history"
	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
	"github.com/radieske/halftime-predictor/internal/prediction-service/pipeline"
	"github.com/radieske/halftime-predictor/internal/prediction-service/predictor"
	"github.com/radieske/halftime-predictor/internal/prediction-service/prompt"
)

const maxBodyBytes = 1 << 20

type Submitter interface {
	Submit(ctx context.Context, rec match.Record) (*pipeline.Result, error)
}

type HistoryLister interface {
	List(ctx context.Context) ([]history.Entry, error)
}

// LegacyPredictor é o caminho antigo /predict (dados brutos, sem prompt)
type LegacyPredictor interface {
	LegacyEnabled() bool
	PredictRaw(ctx context.Context, rec match.Record) (json.RawMessage, error)
}

// API expõe o formulário de previsão como endpoints REST
// Legacy e WS são opcionais: nil desativa a rota
type API struct {
	Log      *zap.Logger
	Pipeline Submitter
	History  HistoryLister
	Legacy   LegacyPredictor
	WS       http.HandlerFunc

	RequestTimeout time.Duration // 0 = sem prazo
	AllowedOrigins []string
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(a.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/v1/predictions", a.createPrediction)
	r.Get("/v1/predictions/history", a.listHistory)
	// só monta o prompt, sem chamada de rede
	r.Post("/v1/predictions/prompt", a.previewPrompt)
	if a.WS != nil {
		r.Get("/v1/predictions/ws", a.WS)
	}
	if a.Legacy != nil && a.Legacy.LegacyEnabled() {
		r.Post("/v1/legacy/predict", a.legacyPredict)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (match.Record, bool) {
	var rec match.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "geçersiz maç verisi: " + err.Error()})
		return rec, false
	}
	return rec, true
}

func (a *API) createPrediction(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if a.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.RequestTimeout)
		defer cancel()
	}

	res, err := a.Pipeline.Submit(ctx, rec)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{
			"error": pipeline.UserMessage(err),
			"kind":  kindOf(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := a.History.List(r.Context())
	if err != nil {
		a.Log.Error("history list failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": pipeline.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) previewPrompt(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": prompt.Build(rec)})
}

func (a *API) legacyPredict(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	raw, err := a.Legacy.PredictRaw(r.Context(), rec)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{
			"error": pipeline.LegacyUserMessage(err),
			"kind":  kindOf(err),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// statusFor mapeia a taxonomia de erros para status HTTP
func statusFor(err error) int {
	switch predictor.KindOf(err) {
	case predictor.KindServer, predictor.KindMalformedResponse:
		return http.StatusBadGateway
	case predictor.KindUnreachable:
		return http.StatusServiceUnavailable
	case predictor.KindTimedOut:
		return http.StatusGatewayTimeout
	}
	// construção do request, persistência e o resto
	return http.StatusInternalServerError
}

func kindOf(err error) string {
	if k := predictor.KindOf(err); k != "" {
		return string(k)
	}
	if errors.Is(err, history.ErrPersistence) {
		return "persistence"
	}
	return "internal"
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.Log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)
	})
}
