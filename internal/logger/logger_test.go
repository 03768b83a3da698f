package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewContextAccumulates(t *testing.T) {
	ctx := NewContext(context.Background(), "request_id", "r1")
	ctx = NewContext(ctx, "user_id", int64(7))

	args, ok := ctx.Value(ctxKey{}).([]any)
	if !ok {
		t.Fatalf("expected attributes in context")
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 attribute values, got %d", len(args))
	}
	if args[0] != "request_id" || args[2] != "user_id" {
		t.Fatalf("unexpected attributes %v", args)
	}

	if WithContext(ctx) == nil {
		t.Fatalf("expected logger")
	}
}
