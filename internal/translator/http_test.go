package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIProvider_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("expected default model, got %v", req["model"])
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "\"Привіт, світе!\""}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := &OpenAIProvider{
		apiKey:  "test-key",
		model:   DefaultOpenAIModel,
		baseURL: server.URL,
		client:  server.Client(),
	}

	text, err := svc.Translate(context.Background(), Request{Text: "Hello, world!", TargetLang: "uk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Quote wrapping is an LLM artifact and must be stripped.
	if text != "Привіт, світе!" {
		t.Errorf("expected unwrapped translation, got %q", text)
	}
}

func TestOpenAIProvider_Translate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "9")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	svc := &OpenAIProvider{
		apiKey:  "test-key",
		model:   DefaultOpenAIModel,
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
	if rle.RetryAfter != 9*time.Second {
		t.Errorf("expected retry-after 9s, got %s", rle.RetryAfter)
	}
	if rle.Service != "openai" {
		t.Errorf("expected service 'openai', got %q", rle.Service)
	}
}

func TestOpenAIProvider_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer server.Close()

	svc := &OpenAIProvider{
		apiKey:  "test-key",
		model:   DefaultOpenAIModel,
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if _, throttled := Classify(err); throttled {
		t.Error("a 400 must not classify as throttling")
	}
}

func TestOpenAIProvider_Translate_NoAPIKey(t *testing.T) {
	svc := NewOpenAIProvider(Config{})

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err == nil {
		t.Error("expected error when no API key")
	}
}

func TestOpenAIProvider_Translate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := &OpenAIProvider{
		apiKey:  "test-key",
		model:   DefaultOpenAIModel,
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOpenAIProvider_ContextInPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(req.Messages))
		}
		system := req.Messages[0].Content
		if !strings.Contains(system, "menu label") {
			t.Errorf("expected catalog context in system prompt, got %q", system)
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Datei"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := &OpenAIProvider{
		apiKey:  "test-key",
		model:   DefaultOpenAIModel,
		baseURL: server.URL,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "File", TargetLang: "de", Context: "#. menu label"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaProvider_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "Привіт"})
	}))
	defer server.Close()

	svc := &OllamaProvider{
		baseURL: server.URL,
		model:   DefaultOllamaModel,
		client:  server.Client(),
	}

	text, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Привіт" {
		t.Errorf("expected 'Привіт', got %q", text)
	}
}

func TestOllamaProvider_Translate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := &OllamaProvider{
		baseURL: server.URL,
		model:   DefaultOllamaModel,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
}

func TestOllamaProvider_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := &OllamaProvider{
		baseURL: server.URL,
		model:   DefaultOllamaModel,
		client:  server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err == nil {
		t.Error("expected error for non-OK status")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := &OllamaProvider{baseURL: server.URL, client: server.Client()}
	if err := svc.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaProvider_IsAvailable_NotRunning(t *testing.T) {
	svc := &OllamaProvider{
		baseURL: "http://localhost:19999",
		client:  &http.Client{Timeout: 100 * time.Millisecond},
	}
	if err := svc.IsAvailable(context.Background()); err == nil {
		t.Error("expected error when Ollama not reachable")
	}
}

func TestMyMemoryProvider_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langpair"); got != "en|uk" {
			t.Errorf("expected langpair en|uk, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":   map[string]string{"translatedText": "Привіт"},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	svc := &MyMemoryProvider{
		sourceLang: "en",
		baseURL:    server.URL,
		client:     server.Client(),
	}

	text, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Привіт" {
		t.Errorf("expected 'Привіт', got %q", text)
	}
}

func TestMyMemoryProvider_Translate_RestoresPlaceholders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "[PH0]") {
			t.Errorf("expected protected placeholder in query, got %q", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":   map[string]string{"translatedText": "Знайдено [PH0] файлів"},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	svc := &MyMemoryProvider{
		sourceLang: "en",
		baseURL:    server.URL,
		client:     server.Client(),
	}

	text, err := svc.Translate(context.Background(), Request{Text: "Found %d files", TargetLang: "uk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Знайдено %d файлів" {
		t.Errorf("expected placeholder restored, got %q", text)
	}
}

func TestMyMemoryProvider_Translate_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":    map[string]string{"translatedText": ""},
			"responseStatus":  403,
			"responseDetails": "YOU USED ALL AVAILABLE FREE TRANSLATIONS FOR TODAY. QUOTA FINISHED",
		})
	}))
	defer server.Close()

	svc := &MyMemoryProvider{
		sourceLang: "en",
		baseURL:    server.URL,
		client:     server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError for quota message, got %v", err)
	}
}

func TestMyMemoryProvider_Translate_HTTP429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too Many Requests"))
	}))
	defer server.Close()

	svc := &MyMemoryProvider{
		sourceLang: "en",
		baseURL:    server.URL,
		client:     server.Client(),
	}

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "uk"})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError for HTTP 429, got %v", err)
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewOpenAIProvider(Config{APIKey: "k"}).Name(); got != "openai" {
		t.Errorf("expected 'openai', got %q", got)
	}
	if got := NewOllamaProvider(Config{}).Name(); got != "ollama" {
		t.Errorf("expected 'ollama', got %q", got)
	}
	if got := NewMyMemoryProvider(Config{}, "").Name(); got != "mymemory" {
		t.Errorf("expected 'mymemory', got %q", got)
	}
	if got := NewGoogleProvider(Config{}).Name(); got != "google" {
		t.Errorf("expected 'google', got %q", got)
	}
}
