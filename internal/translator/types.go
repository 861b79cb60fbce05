// Package translator defines the translation capability consumed by the
// engine and its closed set of provider families: Google Cloud Translation,
// OpenAI-compatible chat endpoints, Ollama, and MyMemory. Each family owns
// its own request/response shaping and error classification, exposing only
// the translate-or-classified-failure contract upward.
package translator

import (
	"context"
	"time"
)

// Request is one translation call.
type Request struct {
	// Text is the source string to translate.
	Text string
	// TargetLang is the target language code (e.g. "uk", "pt-BR").
	TargetLang string
	// Context is optional free-form context for the translation, typically
	// the catalog entry's comment lines.
	Context string
}

// Provider is a translation backend. Implementations return either the
// translated text or an error; throttling-shaped errors are reported as
// *RateLimitError so callers can pick a retry strategy.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
}

// Config carries the caller-supplied backend configuration shared by the
// provider constructors.
type Config struct {
	// APIKey authenticates HTTP providers (MyMemory uses Email instead).
	APIKey string
	// Model is the model identifier for LLM-backed providers.
	Model string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// Credentials is a Google Cloud credentials file path.
	Credentials string
	// Email raises MyMemory's free-tier quota.
	Email string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

func (c Config) effectiveTimeout(def time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return def
}
