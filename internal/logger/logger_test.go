package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARNING": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"bogus":   logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(logrus.DebugLevel, &buf)
	l.WithField("frame", 3).WithField("component", "buffer").Debug("evict")

	line := buf.String()
	assert.Contains(t, line, "[DEBU] evict component=buffer frame=3")
	assert.Equal(t, byte('\n'), line[len(line)-1])
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bufmgr.log")
	require.NoError(t, InitLogger(LogConfig{LogPath: path, LogLevel: "info"}))
	defer InitLogger(LogConfig{LogLevel: "warn"})

	WithComponent("test").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello component=test")
}

func TestInitLoggerClosesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")
	defer InitLogger(LogConfig{LogLevel: "warn"})

	require.NoError(t, InitLogger(LogConfig{LogPath: first, LogLevel: "info"}))
	prev := logFile
	require.NotNil(t, prev)

	require.NoError(t, InitLogger(LogConfig{LogPath: second, LogLevel: "info"}))
	assert.NotSame(t, prev, logFile)
	_, err := prev.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed, "first file closed on re-init")

	WithComponent("test").Info("rotated")
	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated component=test")

	require.NoError(t, InitLogger(LogConfig{LogLevel: "warn"}))
	assert.Nil(t, logFile, "stderr-only config releases the file")
}
