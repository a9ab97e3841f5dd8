// Package logging bridges zerolog events into the system_logs table.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/utils"
	"github.com/rs/zerolog"
)

// SinkFunc persists one system log record. Implementations must not log
// through zerolog, or events would re-enter this writer.
type SinkFunc func(*models.SystemLog)

// DatabaseWriter converts zerolog JSON events into SystemLog rows. The
// sink is bound after the storage layer is initialized; events arriving
// before that are dropped. Failures inside the writer go to stderr only.
type DatabaseWriter struct {
	mu       sync.RWMutex
	sink     SinkFunc
	minLevel zerolog.Level
}

// NewDatabaseWriter creates a writer persisting events at or above
// minLevel ("debug", "info", "warn", "error").
func NewDatabaseWriter(minLevel string) *DatabaseWriter {
	lvl, err := zerolog.ParseLevel(minLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return &DatabaseWriter{minLevel: lvl}
}

// SetSink binds the downstream store. Called once during startup, after
// the database connection is ready.
func (w *DatabaseWriter) SetSink(sink SinkFunc) {
	w.mu.Lock()
	w.sink = sink
	w.mu.Unlock()
}

func (w *DatabaseWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter so events below the
// threshold are skipped without parsing.
func (w *DatabaseWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.minLevel || level >= zerolog.NoLevel {
		return len(p), nil
	}

	w.mu.RLock()
	sink := w.sink
	w.mu.RUnlock()
	if sink == nil {
		return len(p), nil
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "dbwriter: panic persisting log event: %v\n", r)
		}
	}()

	record := w.convert(level, p)
	sink(record)
	return len(p), nil
}

func (w *DatabaseWriter) convert(level zerolog.Level, p []byte) *models.SystemLog {
	var event map[string]interface{}
	if err := json.Unmarshal(p, &event); err != nil {
		// Persist the raw line rather than lose the event.
		return &models.SystemLog{
			Level:     levelName(level),
			Message:   utils.Truncate(strings.TrimSpace(string(p)), models.MaxMessageLen),
			CreatedAt: time.Now(),
		}
	}

	record := &models.SystemLog{
		Level:     levelName(level),
		Message:   utils.Truncate(stringField(event, zerolog.MessageFieldName), models.MaxMessageLen),
		Exception: utils.Truncate(stringField(event, zerolog.ErrorFieldName), models.MaxExceptionLen),
		TraceID:   stringField(event, "trace_id"),
		CreatedAt: time.Now(),
	}

	if caller := stringField(event, zerolog.CallerFieldName); caller != "" {
		file, line := splitCaller(caller)
		record.LoggerName = file
		record.ClassName = file
		record.LineNumber = line
	}

	if stack := stringField(event, zerolog.ErrorStackFieldName); stack != "" {
		record.Exception = utils.Truncate(stack, models.MaxExceptionLen)
	}

	return record
}

func stringField(event map[string]interface{}, key string) string {
	if v, ok := event[key].(string); ok {
		return v
	}
	return ""
}

// splitCaller breaks a zerolog caller value ("dir/file.go:123") into its
// file and line parts.
func splitCaller(caller string) (string, int) {
	idx := strings.LastIndex(caller, ":")
	if idx == -1 {
		return caller, 0
	}
	line, err := strconv.Atoi(caller[idx+1:])
	if err != nil {
		return caller, 0
	}
	return caller[:idx], line
}

func levelName(level zerolog.Level) string {
	switch level {
	case zerolog.DebugLevel:
		return models.LevelDebug
	case zerolog.InfoLevel:
		return models.LevelInfo
	case zerolog.WarnLevel:
		return models.LevelWarn
	default:
		return models.LevelError
	}
}
