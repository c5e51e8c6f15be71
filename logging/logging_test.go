package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			l, err := New(level)
			require.NoError(t, err)
			want, _ := zapcore.ParseLevel(level)
			assert.True(t, l.Desugar().Core().Enabled(want))
		})
	}

	t.Run("info does not enable debug", func(t *testing.T) {
		l, err := New("info")
		require.NoError(t, err)
		assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New("loud")
		assert.Error(t, err)
	})
}

func TestGormLogger(t *testing.T) {
	assert.NotNil(t, GormLogger(zap.NewNop().Sugar()))
}
