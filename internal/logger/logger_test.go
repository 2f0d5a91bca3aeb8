package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("tags every entry with the service name", func(t *testing.T) {
		var buf bytes.Buffer
		l := New("production").Output(&buf)
		l.Info().Msg("hello")
		assert.Contains(t, buf.String(), `"service":"shop-api"`)
	})

	t.Run("development lowers the level to debug", func(t *testing.T) {
		assert.Equal(t, zerolog.DebugLevel, New("development").GetLevel())
		assert.Equal(t, zerolog.InfoLevel, New("production").GetLevel())
	})
}

func TestNop(t *testing.T) {
	// must not panic and must stay silent
	l := Nop()
	l.Error().Msg("dropped")
}
