package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
)

// maxErrorBody limita quanto do corpo de erro é lido para extrair a mensagem do provedor
const maxErrorBody = 64 << 10

var validate = validator.New()

// Endpoint é o destino da inferência: URL completa do generateContent + chave (?key=)
type Endpoint struct {
	BaseURL string `validate:"required,url"`
	APIKey  string `validate:"required"`
}

// Client faz uma única chamada POST por pedido. Sem retry e sem timeout próprio:
// o prazo, se houver, vem do context do chamador.
type Client struct {
	endpoint  Endpoint
	legacyURL string
	HTTP      *http.Client
	log       *zap.Logger
}

type Option func(*Client)

// WithHTTPClient troca o *http.Client (testes, transporte customizado)
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTP = h } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithLegacyURL habilita o caminho legado POST <base>/predict
func WithLegacyURL(base string) Option {
	return func(c *Client) { c.legacyURL = strings.TrimRight(strings.TrimSpace(base), "/") }
}

// New não valida o endpoint: configuração ausente só aparece na chamada,
// como KindRequestConstruction.
func New(ep Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint: Endpoint{BaseURL: strings.TrimSpace(ep.BaseURL), APIKey: strings.TrimSpace(ep.APIKey)},
		HTTP:     &http.Client{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate envia o prompt e devolve o envelope decodificado
func (c *Client) Generate(ctx context.Context, promptText string) (*GenerateResponse, error) {
	target, err := c.generateURL()
	if err != nil {
		return nil, err
	}
	body := GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: promptText}}}},
		GenerationConfig: DefaultGenerationConfig,
	}

	var out GenerateResponse
	if err := c.postJSON(ctx, target, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictRaw é o caminho legado: manda o Record cru para <legacy>/predict e devolve
// o JSON da resposta sem interpretação. Mesma taxonomia de erros do Generate.
func (c *Client) PredictRaw(ctx context.Context, rec match.Record) (json.RawMessage, error) {
	if c.legacyURL == "" {
		return nil, constructionErr("legacy predict url not configured")
	}
	if _, err := url.ParseRequestURI(c.legacyURL); err != nil {
		return nil, constructionErr("legacy predict url: %w", err)
	}

	var out json.RawMessage
	if err := c.postJSON(ctx, c.legacyURL+"/predict", rec, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LegacyEnabled informa se o caminho legado foi configurado
func (c *Client) LegacyEnabled() bool { return c.legacyURL != "" }

func (c *Client) generateURL() (string, error) {
	if err := validate.Struct(c.endpoint); err != nil {
		return "", constructionErr("inference endpoint: %w", err)
	}
	u, err := url.Parse(c.endpoint.BaseURL)
	if err != nil {
		return "", constructionErr("inference url: %w", err)
	}
	q := u.Query()
	q.Set("key", c.endpoint.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// postJSON concentra o transporte e a classificação de falhas dos dois caminhos
func (c *Client) postJSON(ctx context.Context, target string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return constructionErr("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return constructionErr("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// nunca loga a query (contém a chave)
	dest := req.URL.Host + req.URL.Path
	start := time.Now()
	c.log.Debug("inference request", zap.String("url", dest), zap.Int("bytes", len(b)))

	res, err := c.HTTP.Do(req)
	if err != nil {
		e := transportErr(ctx, err)
		c.log.Warn("inference request failed", zap.String("url", dest), zap.String("kind", string(e.Kind)),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return e
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		e := &Error{Kind: KindServer, Status: res.StatusCode, Message: providerMessage(data)}
		c.log.Warn("inference returned error status", zap.String("url", dest), zap.Int("status", res.StatusCode),
			zap.String("message", e.Message), zap.Duration("elapsed", time.Since(start)))
		return e
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportErr(ctx, err)
		}
		return &Error{Kind: KindMalformedResponse, Err: err}
	}
	c.log.Debug("inference response", zap.String("url", dest), zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// transportErr separa prazo estourado de falha de rede
func transportErr(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimedOut, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimedOut, Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && strings.Contains(ue.Err.Error(), "unsupported protocol scheme") {
		return &Error{Kind: KindRequestConstruction, Err: err}
	}
	return &Error{Kind: KindUnreachable, Err: err}
}

// providerMessage extrai error.message do corpo, quando houver
func providerMessage(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil {
		return ""
	}
	return pe.Error.Message
}
