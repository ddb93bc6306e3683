package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitJSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "info", Format: "json", Output: buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Str("k", "v").Msg("hello")
	Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"unknown": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	if Ctx(context.Background()) == nil {
		t.Fatalf("expected a logger")
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Config{Level: "info", Output: buf})
	t.Cleanup(func() { Init(Config{}) })

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservas/mensal", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/reservas/mensal"`) {
		t.Fatalf("request line missing: %s", out)
	}
	if strings.Count(out, `"request_id"`) != 2 {
		t.Fatalf("expected request id on both lines: %s", out)
	}
}
