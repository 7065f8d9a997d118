package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestHTMX(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"htmx request", "true", true},
		{"plain request", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IsHTMX(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Request", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got != tt.want {
				t.Errorf("IsHTMX() = %v, want %v", got, tt.want)
			}
			if rec.Header().Get("Vary") != "HX-Request" {
				t.Error("expected Vary: HX-Request")
			}
		})
	}
}

func TestIsHTMX_WithoutMiddleware(t *testing.T) {
	if IsHTMX(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("expected false without middleware")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	out := buf.String()
	for _, want := range []string{`"method":"POST"`, `"path":"/api/refresh"`, `"status":418`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}
