// Package common provides the shared logging facility used across the
// pdf-parser packages: the PDF Object Store, CMap Codec, tokenizer,
// catalogue and Replacer all log through the package-level Log variable
// instead of calling fmt/log directly.
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Logger is the interface used for logging throughout the module.
type Logger interface {
	Error(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Notice(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Trace(format string, args ...interface{})
	Success(format string, args ...interface{})
	Data(format string, args ...interface{})
	IsLogLevel(level LogLevel) bool
}

// DummyLogger does nothing. It is the default logger.
type DummyLogger struct{}

// Error does nothing for dummy logger.
func (DummyLogger) Error(format string, args ...interface{}) {}

// Warning does nothing for dummy logger.
func (DummyLogger) Warning(format string, args ...interface{}) {}

// Notice does nothing for dummy logger.
func (DummyLogger) Notice(format string, args ...interface{}) {}

// Info does nothing for dummy logger.
func (DummyLogger) Info(format string, args ...interface{}) {}

// Debug does nothing for dummy logger.
func (DummyLogger) Debug(format string, args ...interface{}) {}

// Trace does nothing for dummy logger.
func (DummyLogger) Trace(format string, args ...interface{}) {}

// Success does nothing for dummy logger.
func (DummyLogger) Success(format string, args ...interface{}) {}

// Data does nothing for dummy logger.
func (DummyLogger) Data(format string, args ...interface{}) {}

// IsLogLevel always returns true for dummy logger.
func (DummyLogger) IsLogLevel(level LogLevel) bool {
	return true
}

// LogLevel is the verbosity level for logging.
type LogLevel int

// Defines the log level enum. The most important logs have the lowest
// values, i.e. LogLevelError = 0 and LogLevelTrace = 5.
const (
	LogLevelTrace   LogLevel = 5
	LogLevelDebug   LogLevel = 4
	LogLevelInfo    LogLevel = 3
	LogLevelNotice  LogLevel = 2
	LogLevelWarning LogLevel = 1
	LogLevelError   LogLevel = 0
)

// VerbosityLevel maps the CLI's --verbose 0..3 flag to a LogLevel.
func VerbosityLevel(v int) LogLevel {
	switch {
	case v <= 0:
		return LogLevelError
	case v == 1:
		return LogLevelWarning
	case v == 2:
		return LogLevelInfo
	default:
		return LogLevelDebug
	}
}

// WriterLogger is a logger that writes lines prefixed with
// [INFO]/[DEBUG]/[WARNING]/[ERROR]/[SUCCESS]/[DATA] to an io.Writer, e.g.
// the CLI's append-only log file.
type WriterLogger struct {
	LogLevel LogLevel
	Output   io.Writer
}

// NewWriterLogger creates a new writer logger.
func NewWriterLogger(logLevel LogLevel, writer io.Writer) *WriterLogger {
	return &WriterLogger{Output: writer, LogLevel: logLevel}
}

// IsLogLevel returns true if the logger's level is at least `level`.
func (l WriterLogger) IsLogLevel(level LogLevel) bool {
	return l.LogLevel >= level
}

// Error logs an error message.
func (l WriterLogger) Error(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelError {
		l.write("[ERROR] ", format, args...)
	}
}

// Warning logs a warning message.
func (l WriterLogger) Warning(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelWarning {
		l.write("[WARNING] ", format, args...)
	}
}

// Notice logs a notice message.
func (l WriterLogger) Notice(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelNotice {
		l.write("[NOTICE] ", format, args...)
	}
}

// Info logs an info message.
func (l WriterLogger) Info(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelInfo {
		l.write("[INFO] ", format, args...)
	}
}

// Debug logs a debug message.
func (l WriterLogger) Debug(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelDebug {
		l.write("[DEBUG] ", format, args...)
	}
}

// Trace logs a trace message, e.g. per-character allocation traces.
func (l WriterLogger) Trace(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelTrace {
		l.write("[TRACE] ", format, args...)
	}
}

// Success logs a successful-operation message. Always emitted: it reports
// the final outcome a CLI run cares about regardless of verbosity.
func (l WriterLogger) Success(format string, args ...interface{}) {
	l.write("[SUCCESS] ", format, args...)
}

// Data logs a structured data line, e.g. an allocated (alias, code, scalar)
// triple. Always emitted, same rationale as Success.
func (l WriterLogger) Data(format string, args ...interface{}) {
	l.write("[DATA] ", format, args...)
}

func (l WriterLogger) write(prefix, format string, args ...interface{}) {
	logLine(l.Output, prefix, format, args...)
}

// ConsoleLogger is a logger that writes to os.Stdout.
type ConsoleLogger struct {
	LogLevel LogLevel
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(logLevel LogLevel) *ConsoleLogger {
	return &ConsoleLogger{LogLevel: logLevel}
}

// IsLogLevel returns true if the logger's level is at least `level`.
func (l ConsoleLogger) IsLogLevel(level LogLevel) bool {
	return l.LogLevel >= level
}

// Error logs an error message.
func (l ConsoleLogger) Error(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelError {
		logLine(os.Stdout, "[ERROR] ", format, args...)
	}
}

// Warning logs a warning message.
func (l ConsoleLogger) Warning(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelWarning {
		logLine(os.Stdout, "[WARNING] ", format, args...)
	}
}

// Notice logs a notice message.
func (l ConsoleLogger) Notice(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelNotice {
		logLine(os.Stdout, "[NOTICE] ", format, args...)
	}
}

// Info logs an info message.
func (l ConsoleLogger) Info(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelInfo {
		logLine(os.Stdout, "[INFO] ", format, args...)
	}
}

// Debug logs a debug message.
func (l ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelDebug {
		logLine(os.Stdout, "[DEBUG] ", format, args...)
	}
}

// Trace logs a trace message.
func (l ConsoleLogger) Trace(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelTrace {
		logLine(os.Stdout, "[TRACE] ", format, args...)
	}
}

// Success logs a successful-operation message.
func (l ConsoleLogger) Success(format string, args ...interface{}) {
	logLine(os.Stdout, "[SUCCESS] ", format, args...)
}

// Data logs a structured data line.
func (l ConsoleLogger) Data(format string, args ...interface{}) {
	logLine(os.Stdout, "[DATA] ", format, args...)
}

// Log is the package-level logger used by every component. It defaults to
// DummyLogger (silent) until SetLogger is called.
var Log Logger = DummyLogger{}

// SetLogger installs `logger` as the module-wide logger.
func SetLogger(logger Logger) {
	Log = logger
}

// logLine writes a single prefixed, source-located log line to f.
func logLine(f io.Writer, prefix string, format string, args ...interface{}) {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}
	src := fmt.Sprintf("%s%s:%d ", prefix, file, line) + format + "\n"
	fmt.Fprintf(f, src, args...)
}
