package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	debugs int
	warns  int
}

func (r *recordingLogger) Debug(string, ...any) { r.debugs++ }
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  { r.warns++ }
func (r *recordingLogger) Error(string, ...any) {}

func TestOrNop(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, OrNop(nil))

	var nilRecorder *recordingLogger
	assert.NotNil(t, OrNop(nilRecorder))

	recorder := &recordingLogger{}
	assert.Equal(t, Logger(recorder), OrNop(recorder))
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNil(nil))
	var nilRecorder *recordingLogger
	assert.True(t, IsNil(nilRecorder))
	assert.False(t, IsNil(Nop()))
	assert.False(t, IsNil(&recordingLogger{}))
}

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	first := &recordingLogger{}
	second := &recordingLogger{}

	logger := Multi(first, nil, second)
	logger.Debug("x")
	logger.Warn("y")

	assert.Equal(t, 1, first.debugs)
	assert.Equal(t, 1, first.warns)
	assert.Equal(t, 1, second.debugs)
	assert.Equal(t, 1, second.warns)
}

func TestMultiFlattensNested(t *testing.T) {
	t.Parallel()

	first := &recordingLogger{}
	second := &recordingLogger{}

	logger := Multi(Multi(first), second)
	logger.Debug("x")

	assert.Equal(t, 1, first.debugs)
	assert.Equal(t, 1, second.debugs)
}

func TestFromLogrusNil(t *testing.T) {
	t.Parallel()

	logger := FromLogrus(nil)
	assert.NotNil(t, logger)
	logger.Info("ignored")
}

func TestNewComponentLoggerIsUsable(t *testing.T) {
	t.Parallel()

	logger := NewComponentLogger("test")
	assert.NotNil(t, logger)
	// Must not panic at any level.
	logger.Debug("debug %d", 1)
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
}
