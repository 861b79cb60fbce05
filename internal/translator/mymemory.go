package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yagoveloso/po-translator-llm/internal/placeholder"
)

// MyMemoryProvider translates through the free MyMemory API. The source
// language defaults to English; MyMemory requires an explicit pair.
type MyMemoryProvider struct {
	email      string
	sourceLang string
	baseURL    string
	client     *http.Client
}

func NewMyMemoryProvider(cfg Config, sourceLang string) *MyMemoryProvider {
	if sourceLang == "" {
		sourceLang = "en"
	}
	return &MyMemoryProvider{
		email:      cfg.Email,
		sourceLang: sourceLang,
		baseURL:    "https://api.mymemory.translated.net",
		client:     &http.Client{Timeout: cfg.effectiveTimeout(30 * time.Second)},
	}
}

func (s *MyMemoryProvider) Name() string {
	return "mymemory"
}

func (s *MyMemoryProvider) Translate(ctx context.Context, req Request) (string, error) {
	protected, markers := placeholder.Protect(req.Text)

	langPair := fmt.Sprintf("%s|%s", s.sourceLang, req.TargetLang)
	apiURL := fmt.Sprintf("%s/get?q=%s&langpair=%s",
		s.baseURL,
		url.QueryEscape(protected),
		url.QueryEscape(langPair))
	if s.email != "" {
		apiURL += "&de=" + url.QueryEscape(s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{
			Service:    s.Name(),
			RetryAfter: retryAfterFromResponse(resp, nil),
			Message:    "API returned status 429",
		}
	}

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if mymemResp.ResponseStatus == 429 ||
		strings.Contains(strings.ToUpper(mymemResp.ResponseDetails), "QUOTA") {
		return "", &RateLimitError{Service: s.Name(), Message: mymemResp.ResponseDetails}
	}
	if mymemResp.ResponseStatus != 200 {
		return "", fmt.Errorf("API error: %s (%d)", mymemResp.ResponseDetails, mymemResp.ResponseStatus)
	}
	if mymemResp.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}

	return placeholder.Restore(mymemResp.ResponseData.TranslatedText, markers), nil
}
