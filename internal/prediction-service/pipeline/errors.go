package pipeline

import (
	"errors"
	"fmt"

	"github.com/radieske/halftime-predictor/internal/prediction-service/history"
	"github.com/radieske/halftime-predictor/internal/prediction-service/predictor"
)

// StageError marca em que estágio a submissão parou
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Mensagens exibidas ao usuário (em turco, como no formulário)
const (
	msgUnreachable  = "Sunucuya ulaşılamıyor. Lütfen internet bağlantınızı kontrol edin."
	msgMalformed    = "Bir hata oluştu: API'den geçerli bir yanıt alınamadı"
	msgConstruction = "İstek oluşturulurken hata oluştu"
	msgTimedOut     = "Zaman aşımı: sunucu zamanında yanıt vermedi."
	msgPersistence  = "Tahmin geçmişi kaydedilemedi. Lütfen tekrar deneyin."
	msgUnknownCause = "Bilinmeyen hata"
)

// UserMessage transforma qualquer erro do pipeline em uma única mensagem legível
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *predictor.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case predictor.KindServer:
			msg := pe.Message
			if msg == "" {
				msg = msgUnknownCause
			}
			return fmt.Sprintf("Sunucu hatası: %d - %s", pe.Status, msg)
		case predictor.KindUnreachable:
			return msgUnreachable
		case predictor.KindTimedOut:
			return msgTimedOut
		case predictor.KindMalformedResponse:
			return msgMalformed
		case predictor.KindRequestConstruction:
			return msgConstruction
		}
	}
	if errors.Is(err, history.ErrPersistence) || errors.Is(err, history.ErrEmptyPrediction) {
		return msgPersistence
	}
	return "Bir hata oluştu: " + err.Error()
}

// LegacyUserMessage segue as mensagens curtas do caminho /predict antigo
func LegacyUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *predictor.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case predictor.KindServer:
			return fmt.Sprintf("Sunucu hatası: %d", pe.Status)
		case predictor.KindUnreachable:
			return "Sunucuya ulaşılamıyor"
		case predictor.KindTimedOut:
			return msgTimedOut
		case predictor.KindMalformedResponse:
			return msgMalformed
		}
	}
	return msgConstruction
}
