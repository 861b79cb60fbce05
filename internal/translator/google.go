package translator

import (
	"context"
	"fmt"
	"sync"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/yagoveloso/po-translator-llm/internal/placeholder"
)

// GoogleProvider translates through the Cloud Translation API. Format
// directives are shielded with placeholder markers around the call, since
// statistical MT tends to mangle them.
type GoogleProvider struct {
	credentials string

	once    sync.Once
	client  *translate.Client
	initErr error
}

func NewGoogleProvider(cfg Config) *GoogleProvider {
	return &GoogleProvider{credentials: cfg.Credentials}
}

func (s *GoogleProvider) Name() string {
	return "google"
}

// init creates the API client on first use; subsequent calls reuse it.
func (s *GoogleProvider) init(ctx context.Context) error {
	s.once.Do(func() {
		opts := []option.ClientOption{}
		if s.credentials != "" {
			opts = append(opts, option.WithCredentialsFile(s.credentials))
		}
		s.client, s.initErr = translate.NewClient(ctx, opts...)
	})
	return s.initErr
}

func (s *GoogleProvider) Translate(ctx context.Context, req Request) (string, error) {
	if err := s.init(ctx); err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", req.TargetLang, err)
	}

	protected, markers := placeholder.Protect(req.Text)

	translations, err := s.client.Translate(ctx, []string{protected}, targetLangTag, &translate.Options{
		Format: translate.Text,
	})
	if err != nil {
		if after, throttled := Classify(err); throttled {
			return "", &RateLimitError{Service: s.Name(), RetryAfter: after, Message: err.Error()}
		}
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return placeholder.Restore(translations[0].Text, markers), nil
}

// Close releases the underlying API client, if one was created.
func (s *GoogleProvider) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
