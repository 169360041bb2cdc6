package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("New() returned nil")
	}

	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("Expected error message to contain 'test error', got: %s", err.Error())
	}

	if err.Location() == "" {
		t.Error("Location should not be empty")
	}
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")
	err := Wrap(baseErr, "wrapped")

	if err == nil {
		t.Fatal("Wrap() returned nil")
	}

	if !strings.Contains(err.Error(), "wrapped") {
		t.Errorf("Expected error message to contain 'wrapped', got: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "base error") {
		t.Errorf("Expected error message to contain 'base error', got: %s", err.Error())
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != baseErr {
		t.Errorf("Unwrap() returned wrong error: %v", unwrapped)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "wrapped"); err != nil {
		t.Errorf("Wrap(nil) should return nil, got: %v", err)
	}
}

func TestWithField(t *testing.T) {
	err := New("test error").WithField("key", "value")

	fields := err.GetFields()
	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}

	if fields["key"] != "value" {
		t.Errorf("Expected field['key'] = 'value', got: %v", fields["key"])
	}
}

func TestWithFieldImmutable(t *testing.T) {
	base := New("test error").WithField("a", 1)
	derived := base.WithField("b", 2)

	if len(base.GetFields()) != 1 {
		t.Errorf("WithField should not mutate the original error, fields: %v", base.GetFields())
	}
	if len(derived.GetFields()) != 2 {
		t.Errorf("Expected 2 fields on derived error, got %d", len(derived.GetFields()))
	}
}

func TestIsSentinel(t *testing.T) {
	err := Wrap(ErrInvalidFeatures, "rejecting recording")

	if !errors.Is(err, ErrInvalidFeatures) {
		t.Error("Wrapped sentinel should match with errors.Is")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Wrapped sentinel should not match an unrelated sentinel")
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid features", ErrInvalidFeatures, http.StatusBadRequest},
		{"not found", ErrAnalysisNotFound, http.StatusNotFound},
		{"storage", ErrStorageFailure, http.StatusInternalServerError},
		{"wrapped", Wrap(ErrInvalidFeatures, "context"), http.StatusBadRequest},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Wrap(ErrInvalidFeatures, "bad vector"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json content type, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "bad vector") {
		t.Errorf("Response body should contain the message, got: %s", rec.Body.String())
	}
}
