package predictor

// ExtractText lê candidates[0].content.parts[0].text. Caminho ausente ou texto
// vazio => KindMalformedResponse. O texto volta sem alteração (pode ser markdown).
func ExtractText(resp *GenerateResponse) (string, error) {
	if resp == nil {
		return "", malformed("empty response body")
	}
	if len(resp.Candidates) == 0 {
		return "", malformed("no candidates in response")
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", malformed("first candidate has no content")
	}
	if len(content.Parts) == 0 {
		return "", malformed("first candidate has no parts")
	}
	text := content.Parts[0].Text
	if text == "" {
		return "", malformed("first part has empty text")
	}
	return text, nil
}
