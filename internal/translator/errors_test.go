package translator

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassify_TypedError(t *testing.T) {
	err := &RateLimitError{Service: "openai", RetryAfter: 7 * time.Second, Message: "slow down"}

	retryAfter, throttled := Classify(err)
	if !throttled {
		t.Error("expected typed error to classify as throttled")
	}
	if retryAfter != 7*time.Second {
		t.Errorf("expected retry-after 7s, got %s", retryAfter)
	}
}

func TestClassify_WrappedTypedError(t *testing.T) {
	inner := &RateLimitError{Service: "google", RetryAfter: 3 * time.Second}
	err := fmt.Errorf("translate failed: %w", inner)

	retryAfter, throttled := Classify(err)
	if !throttled || retryAfter != 3*time.Second {
		t.Errorf("wrapped typed error not recognized: %s, %v", retryAfter, throttled)
	}
}

func TestClassify_MessagePatterns(t *testing.T) {
	tests := []struct {
		msg       string
		throttled bool
	}{
		{"Rate Limit exceeded for project", true},
		{"HTTP 429 Too Many Requests", true},
		{"quota exceeded, try later", true},
		{"request was throttled", true},
		{"RESOURCE EXHAUSTED", true},
		{"connection refused", false},
		{"invalid API key", false},
	}
	for _, tt := range tests {
		retryAfter, throttled := Classify(errors.New(tt.msg))
		if throttled != tt.throttled {
			t.Errorf("Classify(%q) throttled = %v, want %v", tt.msg, throttled, tt.throttled)
		}
		if retryAfter != 0 {
			t.Errorf("Classify(%q) carried retry-after %s without a typed error", tt.msg, retryAfter)
		}
	}
}

func TestClassify_Nil(t *testing.T) {
	if _, throttled := Classify(nil); throttled {
		t.Error("nil error classified as throttled")
	}
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{Service: "mymemory", Message: "quota"}
	if got := err.Error(); got != "mymemory: rate limited: quota" {
		t.Errorf("unexpected message: %q", got)
	}

	err.RetryAfter = 5 * time.Second
	want := "mymemory: rate limited (retry after 5s): quota"
	if got := err.Error(); got != want {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestRetryAfterFromResponse_Header(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"12"}}}
	if got := retryAfterFromResponse(resp, nil); got != 12*time.Second {
		t.Errorf("expected 12s from header, got %s", got)
	}
}

func TestRetryAfterFromResponse_RetryInfoDetail(t *testing.T) {
	body := []byte(`{"error":{"details":[
		{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"2.5s"}
	]}}`)
	resp := &http.Response{Header: http.Header{}}
	if got := retryAfterFromResponse(resp, body); got != 2500*time.Millisecond {
		t.Errorf("expected 2.5s from RetryInfo, got %s", got)
	}
}

func TestRetryAfterFromResponse_None(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if got := retryAfterFromResponse(resp, []byte(`{"error":"nope"}`)); got != 0 {
		t.Errorf("expected zero, got %s", got)
	}
}
