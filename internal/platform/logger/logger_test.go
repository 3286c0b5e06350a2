package logger

import (
	"bytes"
	"context"
	"testing"

	kit "github.com/BabakRosewater/inventory-history/internal/platform/testkit"
)

// Init is sync.Once-guarded, so every check shares one buffer-backed root.
func TestLoggerInitAndChildren(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Service: "invhist-test", Writer: &buf})

	Get().Info().Str("k", "v").Msg("root hello")
	kit.MustContain(t, buf.String(), `"root hello"`)
	kit.MustContain(t, buf.String(), `"service":"invhist-test"`)

	buf.Reset()
	Named("appready").Info().Msg("named hello")
	kit.MustContain(t, buf.String(), `"component":"appready"`)

	buf.Reset()
	ctx := WithRun(context.Background(), "run-123")
	C(ctx).Info().Msg("run hello")
	kit.MustContain(t, buf.String(), `"run_id":"run-123"`)

	// empty run id leaves ctx untouched
	if WithRun(context.Background(), "") != context.Background() {
		t.Fatalf("WithRun(\"\") should return ctx unchanged")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"WARN", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"bogus", "info"},
		{"", "info"},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.in).String(); got != tc.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
