// Package simulator imita o endpoint generateContent e o /predict legado
// para desenvolvimento local e demos, sem chave real nem custo.
package simulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
	"github.com/radieske/halftime-predictor/internal/prediction-service/predictor"
)

// Modos de resposta; o header X-Simulator-Mode sobrescreve o padrão por request
const (
	ModeOK        = "ok"
	ModeError     = "error"
	ModeHang      = "hang"
	ModeMalformed = "malformed"
)

const modeHeader = "X-Simulator-Mode"

type Server struct {
	log  *zap.Logger
	mode string

	OnRequest func(route, mode string) // métricas
}

func NewServer(log *zap.Logger, mode string) *Server {
	switch mode {
	case ModeOK, ModeError, ModeHang, ModeMalformed:
	default:
		mode = ModeOK
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, mode: mode}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1beta/models/{model}", s.generateContent) // {model} = "<nome>:generateContent"
	r.Post("/predict", s.legacyPredict)
	return r
}

func (s *Server) modeFor(r *http.Request) string {
	switch m := r.Header.Get(modeHeader); m {
	case ModeOK, ModeError, ModeHang, ModeMalformed:
		return m
	}
	return s.mode
}

func providerError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": msg, "status": code},
	})
}

func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	if !strings.HasSuffix(model, ":generateContent") {
		providerError(w, http.StatusNotFound, "method not found: "+model, "NOT_FOUND")
		return
	}
	if r.URL.Query().Get("key") == "" {
		providerError(w, http.StatusBadRequest, "API key not valid. Please pass a valid API key.", "INVALID_ARGUMENT")
		return
	}

	var req predictor.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		providerError(w, http.StatusBadRequest, "Invalid JSON payload received.", "INVALID_ARGUMENT")
		return
	}

	mode := s.modeFor(r)
	if s.OnRequest != nil {
		s.OnRequest("generate", mode)
	}
	s.log.Debug("generateContent", zap.String("model", model), zap.String("mode", mode))

	switch mode {
	case ModeError:
		providerError(w, http.StatusInternalServerError, "Internal error encountered.", "INTERNAL")
		return
	case ModeHang:
		// só libera quando o cliente desistir
		<-r.Context().Done()
		return
	case ModeMalformed:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"OTHER"}}`))
		return
	}

	text := predictionText(req.Contents[0].Parts[0].Text)
	resp := predictor.GenerateResponse{Candidates: []predictor.Candidate{{
		Content:      &predictor.Content{Role: "model", Parts: []predictor.Part{{Text: text}}},
		FinishReason: "STOP",
	}}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) legacyPredict(w http.ResponseWriter, r *http.Request) {
	var rec match.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	mode := s.modeFor(r)
	if s.OnRequest != nil {
		s.OnRequest("legacy", mode)
	}
	switch mode {
	case ModeError:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	case ModeHang:
		<-r.Context().Done()
		return
	case ModeMalformed:
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"teams":      rec.TeamsLabel(),
		"prediction": "İkinci yarı 0.5 Üst",
		"confidence": "orta",
	})
}

// predictionText lê placar e times do bloco de dados do prompt e devolve um texto fixo em markdown
func predictionText(prompt string) string {
	score, home, away := "?", "Ev Sahibi", "Deplasman"
	for _, l := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(l, "İlk Yarı Skoru: "):
			if v := strings.TrimPrefix(l, "İlk Yarı Skoru: "); v != "" {
				score = v
			}
		case strings.HasPrefix(l, "Ev Sahibi: "):
			if v := strings.TrimPrefix(l, "Ev Sahibi: "); v != "" {
				home = v
			}
		case strings.HasPrefix(l, "Deplasman: "):
			if v := strings.TrimPrefix(l, "Deplasman: "); v != "" {
				away = v
			}
		}
	}
	return fmt.Sprintf(`**%s vs %s, İY %s sonrası tahminler**

1. **Maç Sonucu:** 1 (orta güven)
2. **İkinci Yarı Gol:** 0.5 Üst (yüksek güven)
3. **Toplam Gol:** 2.5 Üst (orta güven)
4. **İkinci Yarıda Karşılıklı Gol:** Yok (düşük güven)
5. **İkinci Yarı Korner:** 4.5 Üst (orta güven)
6. **İkinci Yarı Kart:** 1.5 Üst (orta güven)
7. **Handikaplı Maç Sonucu:** Ev -1 (düşük güven)

_Simülatör yanıtı, gerçek model değildir._`, home, away, score)
}
