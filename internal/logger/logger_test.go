package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"dpanic": zapcore.DPanicLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestWithLevel lets a logger pass messages below its core's level.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	var (
		quiet   bytes.Buffer
		verbose bytes.Buffer
	)

	ctx := ToContext(context.Background(), NewWithWriter(&quiet, zapcore.WarnLevel))
	DebugKV(ctx, "Rescheduled", "alarm_id", 3)
	WarnKV(ctx, "Ignored command", "alarm_id", 3)

	require.NotContains(t, quiet.String(), "Rescheduled")
	require.Contains(t, quiet.String(), "Ignored command")

	ctx = ToContext(context.Background(), NewWithWriter(&verbose, zapcore.WarnLevel, WithLevel(zapcore.DebugLevel)))
	DebugKV(ctx, "Rescheduled", "alarm_id", 3)

	require.Contains(t, verbose.String(), "Rescheduled")
	require.Contains(t, verbose.String(), "alarm_id")
}
