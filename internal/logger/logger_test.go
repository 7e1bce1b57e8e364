package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHandler(t *testing.T) {
	assert.IsType(t, &slog.TextHandler{}, newHandler(true, ""))
	assert.IsType(t, &slog.JSONHandler{}, newHandler(false, ""))
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Init(true, "")

	assert.Same(t, Log, slog.Default())
	assert.True(t, Log.Enabled(t.Context(), slog.LevelDebug))
}
