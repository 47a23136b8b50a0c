package history

import (
	"context"
	"errors"
)

// isoMillis é o mesmo formato de Date.prototype.toISOString (UTC, milissegundos)
const isoMillis = "2006-01-02T15:04:05.000Z"

// Entry é uma previsão bem-sucedida guardada no histórico. Nunca é alterada depois de criada.
type Entry struct {
	ID         int64  `json:"id"` // unix ms, estritamente crescente dentro do slot
	Date       string `json:"date"`
	Teams      string `json:"teams"`
	Prediction string `json:"prediction"`
	Timestamp  string `json:"timestamp"`
}

var (
	// ErrPersistence envolve qualquer falha de leitura/escrita do slot
	ErrPersistence = errors.New("prediction history persistence failed")
	// ErrConflict: o compare-and-swap não conseguiu gravar dentro do limite de tentativas
	ErrConflict = errors.New("prediction history update conflict")
	// ErrEmptyPrediction: texto vazio nunca entra no histórico
	ErrEmptyPrediction = errors.New("empty prediction text")
)

// UpdateFunc recebe a lista atual (mais recente primeiro) e devolve a nova lista.
// Pode ser chamada mais de uma vez quando o Store precisa repetir a transação.
type UpdateFunc func(current []Entry) ([]Entry, error)

// Store guarda a lista inteira em um único slot nomeado.
// Update é um read-modify-write atômico: duas escritas concorrentes nunca perdem entrada.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Update(ctx context.Context, fn UpdateFunc) error
}
