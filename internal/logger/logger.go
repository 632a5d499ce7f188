package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It is usable before InitLogger runs.
var Logger = newLogger(logrus.WarnLevel, os.Stderr)

// logFile is the file opened by the last InitLogger, closed on re-init
var logFile *os.File

// LogConfig configures InitLogger
type LogConfig struct {
	LogPath  string
	LogLevel string
}

// CustomFormatter prints "[time] [LEVL] message key=value ..."
type CustomFormatter struct {
	TimestampFormat string
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", timestamp, level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')

	return []byte(b.String()), nil
}

func newLogger(level logrus.Level, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&CustomFormatter{TimestampFormat: "15:04:05 MST 2006/01/02"})
	l.SetLevel(level)
	l.SetOutput(out)
	return l
}

// ParseLevel maps a level name to a logrus level, defaulting to info
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// InitLogger reconfigures Logger. With a LogPath, output goes to stderr and the file.
func InitLogger(config LogConfig) error {
	Logger.SetLevel(ParseLevel(config.LogLevel))

	if config.LogPath == "" {
		Logger.SetOutput(os.Stderr)
		return closeLogFile()
	}

	f, err := openLogFile(config.LogPath)
	if err != nil {
		Logger.SetOutput(os.Stderr)
		closeLogFile()
		return fmt.Errorf("open log file %s: %w", config.LogPath, err)
	}
	Logger.SetOutput(io.MultiWriter(os.Stderr, f))
	if err := closeLogFile(); err != nil {
		Logger.WithError(err).Warn("close previous log file")
	}
	logFile = f
	return nil
}

func closeLogFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// WithComponent returns an entry tagged with the component name
func WithComponent(name string) *logrus.Entry {
	return Logger.WithField("component", name)
}
