package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name           string
		quiet, verbose bool
		want           slog.Level
	}{
		{"default", false, false, slog.LevelInfo},
		{"quiet", true, false, slog.LevelError},
		{"verbose", false, true, slog.LevelDebug},
		{"quiet wins", true, true, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.quiet, tt.verbose)
			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.want))
			assert.False(t, logger.Enabled(ctx, tt.want-1))
		})
	}
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, false).Info("record exported", "identifier", "doi:1")
	assert.Contains(t, buf.String(), `"msg":"record exported"`)
	assert.Contains(t, buf.String(), `"identifier":"doi:1"`)
}
