package logging

import (
	"strings"
	"testing"

	"github.com/biou/admin-console/internal/models"
	"github.com/rs/zerolog"
)

func TestDatabaseWriter_NoSinkDropsEvent(t *testing.T) {
	w := NewDatabaseWriter("info")

	n, err := w.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"hello"}`))
	if err != nil {
		t.Fatalf("WriteLevel() error = %v", err)
	}
	if n == 0 {
		t.Error("WriteLevel() should report the full event consumed")
	}
}

func TestDatabaseWriter_ConvertsEvent(t *testing.T) {
	w := NewDatabaseWriter("info")

	var got *models.SystemLog
	w.SetSink(func(rec *models.SystemLog) { got = rec })

	line := `{"level":"warn","caller":"internal/services/log.go:42","trace_id":"abc123","message":"disk nearly full"}`
	if _, err := w.WriteLevel(zerolog.WarnLevel, []byte(line)); err != nil {
		t.Fatalf("WriteLevel() error = %v", err)
	}

	if got == nil {
		t.Fatal("sink was not invoked")
	}
	if got.Level != models.LevelWarn {
		t.Errorf("Level = %q, expected %q", got.Level, models.LevelWarn)
	}
	if got.Message != "disk nearly full" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.TraceID != "abc123" {
		t.Errorf("TraceID = %q", got.TraceID)
	}
	if got.ClassName != "internal/services/log.go" || got.LineNumber != 42 {
		t.Errorf("caller = (%q, %d)", got.ClassName, got.LineNumber)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt must be set")
	}
}

func TestDatabaseWriter_LevelThreshold(t *testing.T) {
	w := NewDatabaseWriter("warn")

	calls := 0
	w.SetSink(func(*models.SystemLog) { calls++ })

	w.WriteLevel(zerolog.DebugLevel, []byte(`{"message":"d"}`))
	w.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"i"}`))
	w.WriteLevel(zerolog.ErrorLevel, []byte(`{"message":"e"}`))

	if calls != 1 {
		t.Errorf("sink calls = %d, expected 1 (error only)", calls)
	}
}

func TestDatabaseWriter_ErrorField(t *testing.T) {
	w := NewDatabaseWriter("info")

	var got *models.SystemLog
	w.SetSink(func(rec *models.SystemLog) { got = rec })

	w.WriteLevel(zerolog.ErrorLevel, []byte(`{"message":"save failed","error":"connection refused"}`))

	if got == nil {
		t.Fatal("sink was not invoked")
	}
	if got.Exception != "connection refused" {
		t.Errorf("Exception = %q", got.Exception)
	}
	if got.Level != models.LevelError {
		t.Errorf("Level = %q, expected %q", got.Level, models.LevelError)
	}
}

func TestDatabaseWriter_MessageCap(t *testing.T) {
	w := NewDatabaseWriter("info")

	var got *models.SystemLog
	w.SetSink(func(rec *models.SystemLog) { got = rec })

	long := strings.Repeat("x", 2000)
	w.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"`+long+`"}`))

	if got == nil {
		t.Fatal("sink was not invoked")
	}
	if len(got.Message) != models.MaxMessageLen+3 {
		t.Errorf("len(Message) = %d, expected %d", len(got.Message), models.MaxMessageLen+3)
	}
	if !strings.HasSuffix(got.Message, "...") {
		t.Error("capped message should end with marker")
	}
}

func TestDatabaseWriter_MalformedEventKeptRaw(t *testing.T) {
	w := NewDatabaseWriter("info")

	var got *models.SystemLog
	w.SetSink(func(rec *models.SystemLog) { got = rec })

	w.WriteLevel(zerolog.InfoLevel, []byte("not json\n"))

	if got == nil {
		t.Fatal("sink was not invoked")
	}
	if got.Message != "not json" {
		t.Errorf("Message = %q, expected raw line", got.Message)
	}
}

func TestDatabaseWriter_SinkPanicIsContained(t *testing.T) {
	w := NewDatabaseWriter("info")
	w.SetSink(func(*models.SystemLog) { panic("sink exploded") })

	// Must not propagate
	if _, err := w.WriteLevel(zerolog.InfoLevel, []byte(`{"message":"m"}`)); err != nil {
		t.Errorf("WriteLevel() error = %v", err)
	}
}
