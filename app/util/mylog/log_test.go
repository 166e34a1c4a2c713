package mylog

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestShouldAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level slog.Level
		attrs []slog.Attr
		want  bool
	}{
		{"error", slog.LevelError, nil, true},
		{"info", slog.LevelInfo, nil, false},
		{"tagged warn", slog.LevelWarn, []slog.Attr{slog.Bool(AlertKey, true)}, true},
		{"other attr", slog.LevelWarn, []slog.Attr{slog.String("channel", "vk")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := slog.NewRecord(time.Now(), tt.level, "msg", 0)
			r.AddAttrs(tt.attrs...)

			if got := ShouldAlert(context.Background(), r); got != tt.want {
				t.Fatalf("ShouldAlert() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	if got := ParseLevel("DEBUG"); got != slog.LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v", got)
	}
	if got := ParseLevel(""); got != slog.LevelInfo {
		t.Fatalf("ParseLevel(\"\") = %v", got)
	}
}
