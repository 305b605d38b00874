// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"  Error  ", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(42), slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.level.toSlogLevel(); got != tt.want {
			t.Errorf("Level(%d).toSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	defer logger.Close()

	if logger.slog == nil {
		t.Fatal("expected a non-nil slog logger")
	}
	if logger.file != nil {
		t.Error("expected no log file without LogDir")
	}
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "tutor"})

	logger.Info("hello from test", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	filename := "tutor_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), `"service":"tutor"`) {
		t.Errorf("log file missing service attribute, got: %s", data)
	}
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir})
	logger.Info("anonymous service")
	logger.Close()

	filename := "algebra_" + time.Now().Format("2006-01-02") + ".log"
	if _, err := os.Stat(filepath.Join(dir, filename)); err != nil {
		t.Errorf("expected default-named log file: %v", err)
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.config.Service != "algebra" {
		t.Errorf("Default() service = %q, want %q", logger.config.Service, "algebra")
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default() level = %v, want %v", logger.config.Level, LevelInfo)
	}
}

// =============================================================================
// Logging and Export Tests
// =============================================================================

func TestLogger_ExporterReceivesEntries(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Service: "tutor", Exporter: exporter})

	logger.Info("solved equation", "equation_id", "abc")
	logger.Error("solve failed", "reason", "no solution")

	// Export runs on a goroutine per entry.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(exporter.Entries()) >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	logger.Close()

	entries := exporter.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 exported entries, got %d", len(entries))
	}
	if entries[0].Message != "solved equation" {
		t.Errorf("first entry = %q", entries[0].Message)
	}
	if entries[0].Service != "tutor" {
		t.Errorf("service = %q, want tutor", entries[0].Service)
	}
	if entries[0].Attrs["equation_id"] != "abc" {
		t.Errorf("attrs = %v", entries[0].Attrs)
	}
	if entries[1].Level != LevelError {
		t.Errorf("second entry level = %v, want error", entries[1].Level)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Level: LevelWarn, Exporter: exporter})
	defer logger.Close()

	logger.Debug("filtered")
	logger.Info("filtered too")
	logger.Warn("kept")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(exporter.Entries()) >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 exported entry, got %d", len(entries))
	}
	if entries[0].Message != "kept" {
		t.Errorf("entry = %q, want kept", entries[0].Message)
	}
}

func TestLogger_With_SharesResources(t *testing.T) {
	logger := New(Config{Quiet: true})
	child := logger.With("request_id", "r-1")

	if child.slog == logger.slog {
		t.Error("child should have its own slog logger")
	}
	if child.exporter != logger.exporter {
		t.Error("child should share the parent's exporter")
	}
	logger.Close()
}

func TestLogger_Slog(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	if logger.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	logger := New(Config{Quiet: true, Exporter: NewBufferedExporter()})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("concurrent", "goroutine", n, "iteration", j)
			}
		}(i)
	}
	wg.Wait()
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestArgsToMap(t *testing.T) {
	attrs := argsToMap([]any{"a", 1, "b", "two", 3, "dropped-key", "dangling"})
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d: %v", len(attrs), attrs)
	}
	if attrs["a"] != 1 || attrs["b"] != "two" {
		t.Errorf("unexpected attrs: %v", attrs)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	got := expandPath("~/logs")
	want := filepath.Join(home, "logs")
	if got != want {
		t.Errorf("expandPath(~/logs) = %q, want %q", got, want)
	}
	if expandPath("/abs/path") != "/abs/path" {
		t.Error("absolute paths should pass through")
	}
}

// =============================================================================
// Exporter Tests
// =============================================================================

func TestNopExporter(t *testing.T) {
	var exporter NopExporter
	if err := exporter.Export(context.Background(), LogEntry{}); err != nil {
		t.Errorf("Export() error = %v", err)
	}
	if err := exporter.Flush(context.Background()); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestWriterExporter(t *testing.T) {
	var sb strings.Builder
	exporter := NewWriterExporter(&sb)

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Message:   "written entry",
		Service:   "tutor",
	}
	if err := exporter.Export(context.Background(), entry); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(sb.String(), "written entry") {
		t.Errorf("output missing message: %q", sb.String())
	}
}
