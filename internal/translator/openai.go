package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yagoveloso/po-translator-llm/internal/postprocess"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider translates through any OpenAI-compatible chat completions
// endpoint (OpenAI, OpenRouter, Groq, or a custom base URL).
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.effectiveTimeout(120 * time.Second)},
	}
}

func (s *OpenAIProvider) Name() string {
	return "openai"
}

func (s *OpenAIProvider) Translate(ctx context.Context, req Request) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key required")
	}

	systemPrompt := buildChatSystemPrompt(req.TargetLang, req.Context)

	chatReq := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Text},
		},
		"temperature": 0.3,
		"max_tokens":  4096,
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{
			Service:    s.Name(),
			RetryAfter: retryAfterFromResponse(resp, body),
			Message:    truncate(string(body), 300),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	text := postprocess.Clean(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return text, nil
}

// buildChatSystemPrompt constructs the system prompt for chat-based
// providers, optionally injecting the entry's catalog context.
func buildChatSystemPrompt(targetLang, context string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional software localization translator. Translate the user's text to %s.\n", targetLang))
	sb.WriteString("Only respond with the translation, nothing else. ")
	sb.WriteString("Preserve format specifiers (%s, %d, %(name)s, {name}) and leading/trailing whitespace exactly as-is. ")
	sb.WriteString("Keep brand names and proper nouns unchanged.")
	if context != "" {
		sb.WriteString(fmt.Sprintf("\n\nCONTEXT (from the catalog, do not translate): %s", context))
	}
	return sb.String()
}

// truncate shortens s for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
