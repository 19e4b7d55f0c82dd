package console

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	t.Run("info level prints plain message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

		logger.Info("library loaded")
		assert.Equal(t, "library loaded\n", buf.String())
	})

	t.Run("debug filtered at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

		logger.Debug("should not appear")
		assert.Empty(t, buf.String())
	})

	t.Run("debug visible at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelDebug))

		logger.Debug("assembled component")
		assert.Contains(t, buf.String(), "assembled component")
	})

	t.Run("warn and error rendered", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

		logger.Warn("watch out")
		logger.Error("something broke")
		assert.Contains(t, buf.String(), "watch out")
		assert.Contains(t, buf.String(), "something broke")
	})

	t.Run("only highlighted attributes printed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

		logger.LogAttrs(context.Background(), slog.LevelInfo, "resolved",
			slog.String("blueprint", "housecat"),
			slog.Int("components", 4),
			slog.Any("error", errors.New("boom")),
		)
		output := buf.String()
		assert.Contains(t, output, "resolved")
		assert.Contains(t, output, "blueprint=housecat")
		assert.Contains(t, output, "error=boom")
		assert.NotContains(t, output, "components=")
	})

	t.Run("Enabled respects level", func(t *testing.T) {
		t.Parallel()

		h := NewPrettyHandler(&bytes.Buffer{}, slog.LevelWarn)
		assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
		assert.True(t, h.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("WithAttrs prefixes message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo)).With(slog.String("command", "validate"))

		logger.Info("started")
		assert.Equal(t, "command=validate started\n", buf.String())
	})

	t.Run("WithGroup qualifies keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo)).WithGroup("load").With(slog.String("file", "a.kdl"))

		logger.Info("parsed")
		assert.Contains(t, buf.String(), "load.file=a.kdl parsed")
	})

	t.Run("WithAttrs and WithGroup empty are identity", func(t *testing.T) {
		t.Parallel()

		h := NewPrettyHandler(&bytes.Buffer{}, slog.LevelInfo)
		assert.Same(t, h, h.WithAttrs(nil))
		assert.Same(t, h, h.WithGroup(""))
	})
}

func TestResolveFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		isTTY   bool
		want    string
		wantErr error
	}{
		{name: "auto on terminal", format: FormatAuto, isTTY: true, want: FormatPretty},
		{name: "auto piped", format: FormatAuto, isTTY: false, want: FormatText},
		{name: "explicit json", format: FormatJSON, isTTY: true, want: FormatJSON},
		{name: "explicit pretty piped", format: FormatPretty, want: FormatPretty},
		{name: "unknown", format: "yaml", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveFormat(tt.format, tt.isTTY)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("chatty")
	require.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		level  slog.Level
	}{
		{name: "pretty", format: FormatPretty, level: slog.LevelInfo},
		{name: "json", format: FormatJSON, level: slog.LevelDebug},
		{name: "text", format: FormatText, level: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.format, tt.level)
			require.NoError(t, err)
			require.NotNil(t, logger)

			logger.Log(context.Background(), tt.level, "test message")
			assert.Contains(t, buf.String(), "test message")
		})
	}

	t.Run("auto must be resolved first", func(t *testing.T) {
		t.Parallel()

		logger, err := NewLogger(&bytes.Buffer{}, FormatAuto, slog.LevelInfo)
		require.ErrorIs(t, err, ErrUnknownFormat)
		require.Nil(t, logger)
	})
}
