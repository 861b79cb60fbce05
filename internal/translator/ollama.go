package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yagoveloso/po-translator-llm/internal/postprocess"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.2"

// OllamaProvider translates through a self-hosted Ollama instance.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: cfg.effectiveTimeout(120 * time.Second)},
	}
}

func (s *OllamaProvider) Name() string {
	return "ollama"
}

func (s *OllamaProvider) Translate(ctx context.Context, req Request) (string, error) {
	prompt := fmt.Sprintf(`Translate the following text to %s.
Only respond with the translation, nothing else. Preserve format specifiers
(%%s, %%d, {name}) and whitespace exactly as-is.`, req.TargetLang)
	if req.Context != "" {
		prompt += fmt.Sprintf("\nContext (do not translate): %s", req.Context)
	}
	prompt += fmt.Sprintf("\n\nText: \"%s\"\n\nTranslation:", req.Text)

	ollamaReq := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{Service: s.Name(), Message: fmt.Sprintf("API returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := postprocess.Clean(ollamaResp.Response)
	if text == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return text, nil
}

// IsAvailable checks that the Ollama daemon is reachable.
func (s *OllamaProvider) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
