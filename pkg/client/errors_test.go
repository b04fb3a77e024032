package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{name: "client error should not retry", errorClass: ErrorClassClient, expected: false},
		{name: "server error should retry", errorClass: ErrorClassServer, expected: true},
		{name: "rate limit should retry", errorClass: ErrorClassRateLimit, expected: true},
		{name: "network error should retry", errorClass: ErrorClassNetwork, expected: true},
		{name: "empty error class should not retry", errorClass: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.errorClass); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, got, tt.expected)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{200, ""},
		{304, ""},
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.want {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				StatusCode: 500,
				ErrorClass: ErrorClassServer,
				Message:    "internal server error",
				Err:        errors.New("connection reset"),
			},
			expected: "character API server error (status 500): internal server error: connection reset",
		},
		{
			name: "page out of range",
			apiError: &APIError{
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "There is nothing here",
			},
			expected: "character API client error (status 404): There is nothing here",
		},
		{
			name: "too many requests",
			apiError: &APIError{
				StatusCode: 429,
				ErrorClass: ErrorClassRateLimit,
				Message:    "Too many requests",
			},
			expected: "character API rate_limit error (status 429): Too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrapped := errors.New("wrapped error")
	apiErr := &APIError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "server error", Err: wrapped}

	if !errors.Is(apiErr, wrapped) {
		t.Error("errors.Is should see the wrapped error")
	}
	if (&APIError{StatusCode: 404}).Unwrap() != nil {
		t.Error("Unwrap() should be nil without a wrapped error")
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := fmt.Errorf("fetch page 99: %w", &APIError{StatusCode: 404, ErrorClass: ErrorClassClient})
	if !IsNotFound(notFound) {
		t.Error("IsNotFound should match a wrapped 404")
	}
	if IsNotFound(&APIError{StatusCode: 500}) {
		t.Error("IsNotFound should not match a 500")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound should not match a plain error")
	}
}
