package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Info("reservation created", "reservation_id", 42)

	output := buf.String()
	assert.Contains(t, output, "reservation created")
	assert.Contains(t, output, `"reservation_id":42`)
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Error("recompute failed")

	assert.Contains(t, buf.String(), "recompute failed")
}

func TestDebugFilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	Debug("hidden")
	assert.Empty(t, buf.String())

	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Debugf("lane %d", 3)
	assert.Contains(t, buf.String(), "lane 3")
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Errorf("slot %s", "2026-10-20:AM")

	assert.Contains(t, buf.String(), "2026-10-20:AM")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithError(assert.AnError).Info("test with error")

	output := buf.String()
	assert.Contains(t, output, "test with error")
	assert.Contains(t, output, "error")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithFields(map[string]interface{}{"kind": "pool", "lane": 4}).Info("lane assigned")

	output := buf.String()
	assert.Contains(t, output, "lane assigned")
	assert.Contains(t, output, `"kind":"pool"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
