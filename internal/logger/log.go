// Package logger configures the process-wide phuslu/log logger and hands out
// component loggers derived from it.
package logger

import (
	"io"
	"os"

	"github.com/anpopa/tkmviewer-sub000/internal/config"

	"github.com/phuslu/log"
)

// parseLogLevel converts string log level to log.Level
func parseLogLevel(levelStr string) log.Level {
	switch levelStr {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func consoleBase(name string) io.Writer {
	if name == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// createConsoleWriter picks a console writer for the configured format.
func createConsoleWriter(cfg config.LoggingConfig) log.Writer {
	base := consoleBase(cfg.Writer)

	switch cfg.Format {
	case "json":
		return &log.IOWriter{Writer: base}
	case "logfmt":
		return &log.ConsoleWriter{
			Writer:         base,
			EndWithMessage: true,
			Formatter:      log.LogfmtFormatter{TimeField: "time"}.Formatter,
		}
	default:
		return &log.ConsoleWriter{
			ColorOutput:    isTerminal(base),
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         base,
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && log.IsTerminal(f.Fd())
}

// createFileWriter creates a rotating file writer.
func createFileWriter(cfg config.LoggingConfig) log.Writer {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	return &log.FileWriter{
		Filename:     cfg.File,
		FileMode:     0o644,
		MaxSize:      int64(maxSize) * 1024 * 1024,
		MaxBackups:   cfg.MaxBackups,
		LocalTime:    true,
		EnsureFolder: true,
	}
}

// createWriter combines the console writer with the optional file writer.
func createWriter(cfg config.LoggingConfig) log.Writer {
	console := createConsoleWriter(cfg)
	if cfg.File == "" {
		return console
	}

	multi := log.MultiEntryWriter{console, createFileWriter(cfg)}
	return &multi
}

// ConfigureLogging configures the global DefaultLogger with user configuration.
func ConfigureLogging(cfg config.LoggingConfig) {
	log.DefaultLogger = log.Logger{
		Level:  parseLogLevel(cfg.Level),
		Writer: createWriter(cfg),
	}

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file", cfg.File != "").
		Msg("Logger configured")
}

// NewLoggerWithContext creates a new logger by copying the global DefaultLogger
// and adding component-specific context. Call it after ConfigureLogging so the
// copy carries the user configuration.
func NewLoggerWithContext(component string) log.Logger {
	bl := &log.DefaultLogger
	return log.Logger{
		Level:        bl.Level,
		Caller:       0,
		TimeField:    bl.TimeField,
		TimeFormat:   bl.TimeFormat,
		TimeLocation: bl.TimeLocation,
		Writer:       bl.Writer,
		Context:      log.NewContext(bl.Context).Str("component", component).Value(),
	}
}
