package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// Logger provides structured logging capabilities
// This abstraction allows swapping logging implementations
type Logger interface {
	// Error logs an error message
	Error(args ...interface{})

	// Errorf logs a formatted error message
	Errorf(format string, args ...interface{})

	// Warn logs a warning message
	Warn(args ...interface{})

	// Warnf logs a formatted warning message
	Warnf(format string, args ...interface{})

	// Info logs an informational message
	Info(args ...interface{})

	// Infof logs a formatted informational message
	Infof(format string, args ...interface{})

	// Debug logs a debug message
	Debug(args ...interface{})

	// Debugf logs a formatted debug message
	Debugf(format string, args ...interface{})

	// WithFields returns a logger that includes the given fields with every message
	WithFields(fields map[string]interface{}) Logger

	// WithContext returns a logger that includes the request ID from ctx, if any
	WithContext(ctx context.Context) Logger
}

// defaultLogger implements Logger using Go's standard log package
// Can be swapped with other logging implementations (e.g., JSON loggers)
type defaultLogger struct {
	errorLogger *log.Logger
	warnLogger  *log.Logger
	infoLogger  *log.Logger
	debugLogger *log.Logger
	fields      map[string]interface{}
}

// NewDefaultLogger creates a new default logger implementation
func NewDefaultLogger() Logger {
	return &defaultLogger{
		errorLogger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		warnLogger:  log.New(os.Stderr, "[WARN] ", log.LstdFlags|log.Lshortfile),
		infoLogger:  log.New(os.Stdout, "[INFO] ", log.LstdFlags|log.Lshortfile),
		debugLogger: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultLogger) clone(fields map[string]interface{}) *defaultLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &defaultLogger{
		errorLogger: l.errorLogger,
		warnLogger:  l.warnLogger,
		infoLogger:  l.infoLogger,
		debugLogger: l.debugLogger,
		fields:      merged,
	}
}

// WithFields returns a logger that appends fields to every message
func (l *defaultLogger) WithFields(fields map[string]interface{}) Logger {
	return l.clone(fields)
}

// WithContext returns a logger carrying the request ID found in ctx
func (l *defaultLogger) WithContext(ctx context.Context) Logger {
	if id := GetRequestID(ctx); id != "" {
		return l.clone(map[string]interface{}{"request_id": id})
	}
	return l
}

// suffix renders the attached fields in deterministic key order
func (l *defaultLogger) suffix() string {
	if len(l.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(" map[")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%v", k, l.fields[k])
	}
	b.WriteByte(']')
	return b.String()
}

func (l *defaultLogger) Error(args ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprint(args...)+l.suffix())
}

func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, args...)+l.suffix())
}

func (l *defaultLogger) Warn(args ...interface{}) {
	l.warnLogger.Output(2, fmt.Sprint(args...)+l.suffix())
}

func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	l.warnLogger.Output(2, fmt.Sprintf(format, args...)+l.suffix())
}

func (l *defaultLogger) Info(args ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprint(args...)+l.suffix())
}

func (l *defaultLogger) Infof(format string, args ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintf(format, args...)+l.suffix())
}

func (l *defaultLogger) Debug(args ...interface{}) {
	l.debugLogger.Output(2, fmt.Sprint(args...)+l.suffix())
}

func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	l.debugLogger.Output(2, fmt.Sprintf(format, args...)+l.suffix())
}

// jsonLogger emits one JSON object per line
// Suitable for log aggregation pipelines
type jsonLogger struct {
	out    *log.Logger
	fields map[string]interface{}
}

// NewJSONLogger creates a logger that writes structured JSON lines to stdout
func NewJSONLogger() Logger {
	return &jsonLogger{
		out: log.New(os.Stdout, "", 0),
	}
}

func (l *jsonLogger) clone(fields map[string]interface{}) *jsonLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &jsonLogger{out: l.out, fields: merged}
}

func (l *jsonLogger) WithFields(fields map[string]interface{}) Logger {
	return l.clone(fields)
}

func (l *jsonLogger) WithContext(ctx context.Context) Logger {
	if id := GetRequestID(ctx); id != "" {
		return l.clone(map[string]interface{}{"request_id": id})
	}
	return l
}

func (l *jsonLogger) emit(level, msg string) {
	entry := make(map[string]interface{}, len(l.fields)+3)
	for k, v := range l.fields {
		entry[k] = v
	}
	entry["level"] = level
	entry["msg"] = msg
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(entry)
	if err != nil {
		// Fall back to plain output rather than dropping the message
		l.out.Printf(`{"level":%q,"msg":%q}`, level, msg)
		return
	}
	l.out.Print(string(b))
}

func (l *jsonLogger) Error(args ...interface{}) { l.emit("error", fmt.Sprint(args...)) }
func (l *jsonLogger) Errorf(format string, args ...interface{}) {
	l.emit("error", fmt.Sprintf(format, args...))
}
func (l *jsonLogger) Warn(args ...interface{}) { l.emit("warn", fmt.Sprint(args...)) }
func (l *jsonLogger) Warnf(format string, args ...interface{}) {
	l.emit("warn", fmt.Sprintf(format, args...))
}
func (l *jsonLogger) Info(args ...interface{}) { l.emit("info", fmt.Sprint(args...)) }
func (l *jsonLogger) Infof(format string, args ...interface{}) {
	l.emit("info", fmt.Sprintf(format, args...))
}
func (l *jsonLogger) Debug(args ...interface{}) { l.emit("debug", fmt.Sprint(args...)) }
func (l *jsonLogger) Debugf(format string, args ...interface{}) {
	l.emit("debug", fmt.Sprintf(format, args...))
}
