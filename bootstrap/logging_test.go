package bootstrap

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogging_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Logging("debug", true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Logging("not-a-level", true)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
