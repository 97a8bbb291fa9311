package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestEvent_New(t *testing.T) {
	event := NewEvent("ctx1", "commit")

	if event.Context != "ctx1" {
		t.Errorf("Context = %q, want %q", event.Context, "ctx1")
	}
	if event.Operation != "commit" {
		t.Errorf("Operation = %q, want %q", event.Operation, "commit")
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_Chaining(t *testing.T) {
	event := NewEvent("ctx1", "commit").
		WithNetwork("net1").
		WithChanges([]string{"create-pa net1/leaf1", "add-virt net1/leaf1/vm0"}).
		WithProblems(0).
		WithSuccess().
		WithDuration(time.Second)

	if event.Network != "net1" {
		t.Errorf("Network = %q", event.Network)
	}
	if len(event.Changes) != 2 {
		t.Errorf("Expected 2 changes, got %d", len(event.Changes))
	}
	if !event.Success {
		t.Error("Success should be true")
	}
	if event.Duration != time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("ctx1", "commit").WithError(errors.New("boom"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "boom" {
		t.Errorf("Error = %q", event.Error)
	}
}

func TestFileLogger_LogAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	if err := logger.Log(NewEvent("ctx1", "commit").WithNetwork("net1").WithSuccess()); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := logger.Log(NewEvent("ctx1", "validate").WithNetwork("net2").WithError(errors.New("bad"))); err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := logger.Query(Filter{Context: "ctx1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	commits, err := logger.Query(Filter{Operation: "commit"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(commits) != 1 || commits[0].Network != "net1" {
		t.Fatalf("expected one commit event for net1, got %+v", commits)
	}

	failures, err := logger.Query(Filter{FailureOnly: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(failures) != 1 || failures[0].Error != "bad" {
		t.Fatalf("expected one failure event, got %+v", failures)
	}
}

func TestFileLogger_QueryMissingFile(t *testing.T) {
	logger := &FileLogger{path: filepath.Join(t.TempDir(), "missing.jsonl")}
	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query on missing file should not error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewFileLogger(path, RotationConfig{MaxSize: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	for i := 0; i < 3; i++ {
		if err := logger.Log(NewEvent("ctx1", "commit").WithSuccess()); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected at least one rotated file")
	}
}

func TestDefaultLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	SetDefaultLogger(logger)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("ctx1", "commit").WithSuccess()); err != nil {
		t.Fatalf("Log: %v", err)
	}
	events, err := Query(Filter{Context: "ctx1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestDefaultLogger_NoneConfigured(t *testing.T) {
	SetDefaultLogger(nil)
	if err := Log(NewEvent("ctx1", "commit")); err != nil {
		t.Fatalf("Log with no logger configured should no-op, got %v", err)
	}
	events, err := Query(Filter{})
	if err != nil {
		t.Fatalf("Query with no logger configured should no-op, got %v", err)
	}
	if events == nil {
		t.Error("Query with no logger configured should return an empty, non-nil slice")
	}
}
