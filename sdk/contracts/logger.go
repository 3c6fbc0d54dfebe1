package contracts

import "time"

// LogLevel is the severity threshold for logging.
type LogLevel int

const (
	// InfoLevel reports normal operational progress.
	InfoLevel LogLevel = iota
	// DebugLevel reports details useful while troubleshooting.
	DebugLevel
	// ErrorLevel reports failures that need attention.
	ErrorLevel
	// WarnLevel reports recoverable conditions worth monitoring.
	WarnLevel
	// FatalLevel reports failures the process cannot continue from.
	FatalLevel
)

// LogDestination selects where log output goes.
type LogDestination string

const (
	// ConsoleLog writes log output to the console.
	ConsoleLog LogDestination = "console"
	// FileLog writes log output to a file.
	FileLog LogDestination = "file"
)

// Field is a typed key/value pair attached to a log entry.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger records messages at the usual severities. Implementations must be
// safe for concurrent use; receivers log from their pump goroutines.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
