package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"numrelay/internal/config"
)

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"5551234567": "555****567",
		"12345":      "***",
		"":           "***",
	}
	for in, want := range cases {
		if got := Redact(in, false); got != want {
			t.Errorf("Redact(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Redact("5551234567", true); got != "5551234567" {
		t.Errorf("dev mode should not redact, got %q", got)
	}
}

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithChatID(WithTraceID(context.Background(), "01HZX"), -100)
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["trace_id"] != "01HZX" {
		t.Fatalf("trace_id = %v", line["trace_id"])
	}
	if line["chat_id"] != float64(-100) {
		t.Fatalf("chat_id = %v", line["chat_id"])
	}
	if TraceID(ctx) != "01HZX" {
		t.Fatalf("TraceID = %q", TraceID(ctx))
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn should be written")
	}
}
