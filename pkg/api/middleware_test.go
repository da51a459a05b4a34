package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyMiddleware(t *testing.T) {
	handler := apiKeyMiddleware("secret-key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"valid key", "secret-key", http.StatusOK},
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "wrong-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if seen == "" {
			t.Error("Expected a request id in the handler context")
		}
		if got := w.Header().Get("X-Request-ID"); got != seen {
			t.Errorf("Expected response header %q, got %q", seen, got)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "client-supplied-id")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if seen != "client-supplied-id" {
			t.Errorf("Expected client id to be kept, got %q", seen)
		}
	})
}
