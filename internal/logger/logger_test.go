package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesEventAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.WarnObj("page fetch failed", "listing_page_error", map[string]any{
		"keyword": "golang",
		"page":    2,
		"error":   errors.New("boom"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "page fetch failed", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "listing_page_error", ctx["event"])
	assert.Equal(t, "golang", ctx["keyword"])
	assert.EqualValues(t, 2, ctx["page"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromZap(zap.New(core))

	log.DebugObj("hidden", "debug_event", nil)
	log.InfoObj("shown", "info_event", nil)
	log.ErrorObj("shown too", "error_event", nil)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml")
	assert.Error(t, err)

	log, err := New("warn", FormatConsole)
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNopLogger(t *testing.T) {
	var log Logger = NopLogger{}
	assert.NotPanics(t, func() {
		log.InfoObj("nothing", "nop", map[string]any{"a": 1})
	})
}
