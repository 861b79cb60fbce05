package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitError is a throttling-shaped failure: the provider signaled the
// caller is issuing requests too fast. RetryAfter carries the provider's
// suggested wait when known, zero otherwise.
type RateLimitError struct {
	Service    string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s): %s", e.Service, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("%s: rate limited: %s", e.Service, e.Message)
}

// throttlePatterns are message fragments that mark a failure as
// throttling-shaped even when the provider did not surface a typed error.
var throttlePatterns = []string{
	"rate limit",
	"too many requests",
	"quota exceeded",
	"throttled",
	"resource exhausted",
	"429",
}

// Classify reports whether err is throttling-shaped, and the provider's
// suggested retry-after when one was carried (zero otherwise).
func Classify(err error) (retryAfter time.Duration, throttled bool) {
	if err == nil {
		return 0, false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter, true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range throttlePatterns {
		if strings.Contains(msg, p) {
			return 0, true
		}
	}
	return 0, false
}

// retryAfterFromResponse extracts a suggested wait from a 429 response:
// the Retry-After header (integer seconds) when present, else Google's
// RetryInfo detail in the body. Returns zero when neither is found.
func retryAfterFromResponse(resp *http.Response, body []byte) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return 0
	}
	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}
