package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "Success", path: "/v1/principal", status: http.StatusOK, wantLevel: "info"},
		{name: "Client error", path: "/v1/principal", status: http.StatusUnauthorized, wantLevel: "warn"},
		{name: "Server error", path: "/v1/token", status: http.StatusInternalServerError, wantLevel: "error"},
		{name: "Quiet path", path: "/healthz", status: http.StatusOK},
		{name: "Quiet path failing", path: "/healthz", status: http.StatusServiceUnavailable, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			h := LoggingMiddleware("/healthz")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				log.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("realm", "acme")
				})
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.wantLevel == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected log line %s", buf.String())
				}
				return
			}
			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("decoding log line %q: %v", buf.String(), err)
			}
			if line["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", line["level"], tt.wantLevel)
			}
			if line["status"] != float64(tt.status) || line["bytes"] != float64(4) {
				t.Errorf("status/bytes = %v/%v", line["status"], line["bytes"])
			}
			if line["realm"] != "acme" {
				t.Errorf("realm = %v, want field added downstream", line["realm"])
			}
		})
	}
}
