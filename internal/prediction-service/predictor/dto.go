package predictor

// GenerateRequest é o corpo aceito pelo endpoint generateContent
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type Part struct {
	Text string `json:"text"`
}

// GenerationConfig são os parâmetros de geração enviados em toda chamada
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig reproduz os valores fixos do formulário
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 1024,
}

// GenerateResponse é o envelope devolvido pelo provedor.
// Content é ponteiro para distinguir "ausente" de "vazio".
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
	// UsageMetadata e afins são ignorados
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// providerError é o formato de erro do provedor: {"error": {"code": 400, "message": "...", "status": "..."}}
type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
