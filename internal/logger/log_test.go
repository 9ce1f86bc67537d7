package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/anpopa/tkmviewer-sub000/internal/config"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel_WhenGivenKnownLevels_ShouldMap(t *testing.T) {
	assert.Equal(t, log.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, log.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, log.ErrorLevel, parseLogLevel("error"))
}

func TestParseLogLevel_WhenUnknown_ShouldDefaultToInfo(t *testing.T) {
	assert.Equal(t, log.InfoLevel, parseLogLevel("chatty"))
}

func TestCreateWriter_WhenNoFileConfigured_ShouldReturnConsoleWriter(t *testing.T) {
	w := createWriter(config.LoggingConfig{Format: "logfmt"})
	_, ok := w.(*log.ConsoleWriter)
	assert.True(t, ok, "expected console writer, got %T", w)
}

func TestCreateWriter_WhenJSONFormat_ShouldReturnIOWriter(t *testing.T) {
	w := createWriter(config.LoggingConfig{Format: "json", Writer: "stdout"})
	_, ok := w.(*log.IOWriter)
	assert.True(t, ok, "expected io writer, got %T", w)
}

func TestCreateWriter_WhenFileConfigured_ShouldFanOut(t *testing.T) {
	w := createWriter(config.LoggingConfig{File: filepath.Join(t.TempDir(), "x.log")})
	multi, ok := w.(*log.MultiEntryWriter)
	if assert.True(t, ok, "expected multi writer, got %T", w) {
		assert.Len(t, *multi, 2)
	}
}

func TestNewLoggerWithContext_ShouldInheritDefaultLevel(t *testing.T) {
	saved := log.DefaultLogger
	t.Cleanup(func() { log.DefaultLogger = saved })

	ConfigureLogging(config.LoggingConfig{Level: "warn", Format: "json"})
	l := NewLoggerWithContext("store")
	assert.Equal(t, log.WarnLevel, l.Level)
	assert.NotEmpty(t, l.Context)
}

func TestIsTerminal_WhenNotACharDevice_ShouldReturnFalse(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if assert.NoError(t, err) {
		defer f.Close()
		assert.False(t, isTerminal(f))
	}
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
