package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "", want: zapcore.InfoLevel},
		{level: "debug", want: zapcore.DebugLevel},
		{level: "WARN", want: zapcore.WarnLevel},
		{level: "error", want: zapcore.ErrorLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			logger, err := New(tc.level)
			require.NoError(t, err)

			assert.True(t, logger.Core().Enabled(tc.want))
			assert.False(t, logger.Core().Enabled(tc.want-1))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("chatty")
	assert.Error(t, err)
}
