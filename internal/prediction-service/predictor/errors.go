package predictor

import (
	"errors"
	"fmt"
)

// Kind classifica a falha de uma chamada de inferência
type Kind string

const (
	KindRequestConstruction Kind = "request_construction"
	KindUnreachable         Kind = "unreachable"
	KindServer              Kind = "server_error"
	KindTimedOut            Kind = "timed_out"
	KindMalformedResponse   Kind = "malformed_response"
)

// Error é o único tipo de erro devolvido pelo Client.
// Status e Message só são preenchidos para KindServer.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Sentinelas para errors.Is: comparam só o Kind
var (
	ErrRequestConstruction = &Error{Kind: KindRequestConstruction}
	ErrUnreachable         = &Error{Kind: KindUnreachable}
	ErrServer              = &Error{Kind: KindServer}
	ErrTimedOut            = &Error{Kind: KindTimedOut}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
)

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServer && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Message)
	case e.Kind == KindServer:
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf devolve o Kind de err, ou "" se não for um *Error
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func constructionErr(format string, args ...any) *Error {
	return &Error{Kind: KindRequestConstruction, Err: fmt.Errorf(format, args...)}
}

func malformed(reason string) *Error {
	return &Error{Kind: KindMalformedResponse, Err: errors.New(reason)}
}
