package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEntry_Builder(t *testing.T) {
	entry := NewEntry(OpReconstruct, StatusSuccess).
		WithDriver("DSN=elasticsearch").
		WithResource("library").
		WithQuery("select author, name from library").
		WithRowsChecked(24).
		WithDuration(500 * time.Millisecond).
		WithMetadata("digest", "abc123")

	if entry.Resource != "library" {
		t.Errorf("Expected resource 'library', got '%s'", entry.Resource)
	}

	if entry.RowsChecked != 24 {
		t.Errorf("Expected 24 rows checked, got %d", entry.RowsChecked)
	}

	if entry.Metadata["digest"] != "abc123" {
		t.Error("Expected metadata digest to be 'abc123'")
	}
}

func TestEntry_WithError(t *testing.T) {
	entry := NewEntry(OpCount, StatusSuccess).
		WithError(errors.New("row count mismatch"))

	if entry.Status != StatusFailure {
		t.Errorf("Expected WithError to flip status to failure, got %v", entry.Status)
	}

	if entry.ErrorMessage != "row count mismatch" {
		t.Errorf("Unexpected error message '%s'", entry.ErrorMessage)
	}
}

func TestEntry_FilterByLevel(t *testing.T) {
	entry := NewEntry(OpProto, StatusSuccess).
		WithQuery("SELECT 2").
		WithRowsChecked(1).
		WithDuration(time.Millisecond).
		WithMetadata("case", 7)

	// Minimal: operation, status and resource only.
	minimal := entry.FilterByLevel(LevelMinimal)
	if minimal.Metadata != nil || minimal.Query != "" {
		t.Error("Minimal level should not include metadata or query text")
	}
	if minimal.RowsChecked != 0 || minimal.Duration != 0 {
		t.Error("Minimal level should not include counts or durations")
	}
	if minimal.Operation != OpProto {
		t.Error("Minimal level should keep the operation")
	}

	// Standard: no query text.
	standard := entry.FilterByLevel(LevelStandard)
	if standard.Query != "" || standard.Metadata != nil {
		t.Error("Standard level should not include query text or metadata")
	}
	if standard.RowsChecked != 1 {
		t.Error("Standard level should keep the row count")
	}

	// Full: everything.
	full := entry.FilterByLevel(LevelFull)
	if full.Query != "SELECT 2" || full.Metadata == nil {
		t.Error("Full level should include query text and metadata")
	}
}

func TestEntry_JSON(t *testing.T) {
	entry := NewEntry(OpCatalog, StatusSuccess).
		WithResource("elasticsearch").
		WithRowsChecked(1)

	jsonData, err := entry.ToJSON()
	if err != nil {
		t.Fatalf("Failed to marshal entry: %v", err)
	}

	if len(jsonData) == 0 {
		t.Error("Expected non-empty JSON data")
	}

	indentData, err := entry.ToJSONIndent()
	if err != nil {
		t.Fatalf("Failed to marshal indented entry: %v", err)
	}

	if len(indentData) <= len(jsonData) {
		t.Error("Expected indented JSON to be longer")
	}
}

func TestFileAppender_Write(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "audit.log")

	appender, err := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath,
		MaxSize:    1,
		MaxBackups: 3,
		Level:      LevelStandard,
		FormatJSON: false,
	})

	if err != nil {
		t.Fatalf("Failed to create file appender: %v", err)
	}
	defer appender.Close()

	entry := NewEntry(OpReconstruct, StatusSuccess).
		WithResource("library").
		WithRowsChecked(24)

	err = appender.Append(context.Background(), entry)
	if err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Error("Expected audit file to exist")
	}

	if appender.CurrentSize() == 0 {
		t.Error("Expected non-zero file size")
	}
}

func TestConsoleAppender(t *testing.T) {
	appender := NewConsoleAppender(LevelStandard, false)

	entry := NewEntry(OpConnect, StatusSuccess).
		WithDriver("DSN=elasticsearch")

	err := appender.Append(context.Background(), entry)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	if err := appender.Close(); err != nil {
		t.Errorf("Unexpected error on close: %v", err)
	}
}

func TestNullAppender(t *testing.T) {
	appender := NewNullAppender()

	entry := NewEntry(OpQuery, StatusSuccess)

	err := appender.Append(context.Background(), entry)
	if err != nil {
		t.Errorf("Null appender should never return error, got: %v", err)
	}
}

func TestMultiAppender(t *testing.T) {
	tmpDir := t.TempDir()
	filePath1 := filepath.Join(tmpDir, "audit1.log")
	filePath2 := filepath.Join(tmpDir, "audit2.log")

	appender1, _ := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath1,
		MaxSize:    1,
		MaxBackups: 2,
		Level:      LevelStandard,
		FormatJSON: false,
	})
	defer appender1.Close()

	appender2, _ := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath2,
		MaxSize:    1,
		MaxBackups: 2,
		Level:      LevelFull,
		FormatJSON: true,
	})
	defer appender2.Close()

	multiAppender := NewMultiAppender(appender1, appender2)

	entry := NewEntry(OpColumns, StatusSuccess).
		WithResource("library").
		WithRowsChecked(4)

	err := multiAppender.Append(context.Background(), entry)
	if err != nil {
		t.Fatalf("Failed to append to multi appender: %v", err)
	}

	if _, err := os.Stat(filePath1); os.IsNotExist(err) {
		t.Error("Expected first file to exist")
	}

	if _, err := os.Stat(filePath2); os.IsNotExist(err) {
		t.Error("Expected second file to exist")
	}
}

func TestAuditLogger_Sync(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "audit.log")

	appender, _ := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath,
		MaxSize:    10,
		MaxBackups: 2,
		Level:      LevelStandard,
		FormatJSON: false,
	})
	defer appender.Close()

	logger := NewLogger(DefaultConfig(), appender)
	defer logger.Close()

	entry := NewEntry(OpPaging, StatusSuccess).
		WithResource("library").
		WithRowsChecked(10)

	err := logger.Log(context.Background(), entry)
	if err != nil {
		t.Fatalf("Failed to log entry: %v", err)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Error("Expected audit file to exist")
	}
}

func TestAuditLogger_MinimalLevelAppender(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "audit.log")

	appender, err := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath,
		MaxSize:    1,
		MaxBackups: 2,
		Level:      LevelMinimal,
		FormatJSON: true,
	})
	if err != nil {
		t.Fatalf("Failed to create file appender: %v", err)
	}

	logger := NewLogger(DefaultConfig(), appender)

	entry := NewEntry(OpReconstruct, StatusSuccess).
		WithResource("library").
		WithQuery("select author from library").
		WithRowsChecked(24).
		WithDuration(time.Second)
	if err := logger.Log(context.Background(), entry); err != nil {
		t.Fatalf("Failed to log entry: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	// The minimal level must survive the logger untouched: no detail
	// fields in the trail.
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read trail file: %v", err)
	}
	trail := string(data)
	for _, field := range []string{"rows_checked", "duration", "query"} {
		if strings.Contains(trail, field) {
			t.Errorf("minimal trail contains %q: %s", field, trail)
		}
	}
	if !strings.Contains(trail, "library") {
		t.Errorf("minimal trail lost the resource: %s", trail)
	}
}

func TestAuditLogger_Async(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "audit.log")

	appender, _ := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath,
		MaxSize:    10,
		MaxBackups: 2,
		Level:      LevelStandard,
		FormatJSON: false,
	})
	defer appender.Close()

	config := DefaultConfig()
	config.AsyncMode = true
	config.BufferSize = 100

	logger := NewLogger(config, appender)

	for i := 0; i < 10; i++ {
		entry := NewEntry(OpProto, StatusSuccess).
			WithRowsChecked(int64(i))

		err := logger.Log(context.Background(), entry)
		if err != nil {
			t.Fatalf("Failed to log entry: %v", err)
		}
	}

	// Close drains the buffer before appenders shut down.
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Error("Expected audit file to exist")
	}
}

func TestAuditLogger_LogOperation(t *testing.T) {
	appender := NewNullAppender()

	logger := NewLogger(DefaultConfig(), appender)
	defer logger.Close()

	entry := logger.LogSuccess(context.Background(), OpCatalog)
	if entry.Status != StatusSuccess {
		t.Errorf("Expected StatusSuccess, got %v", entry.Status)
	}

	testErr := errors.New("test error")
	entry = logger.LogFailure(context.Background(), OpCount, testErr)
	if entry.Status != StatusFailure {
		t.Errorf("Expected StatusFailure, got %v", entry.Status)
	}

	if entry.ErrorMessage != testErr.Error() {
		t.Errorf("Expected error message '%s', got '%s'", testErr.Error(), entry.ErrorMessage)
	}
}

func TestAuditLogger_DefaultDriver(t *testing.T) {
	appender := NewNullAppender()

	config := DefaultConfig()
	config.DefaultDriver = "DSN=elasticsearch"

	logger := NewLogger(config, appender)
	defer logger.Close()

	entry := NewEntry(OpQuery, StatusSuccess)
	logger.Log(context.Background(), entry)

	if entry.Driver != config.DefaultDriver {
		t.Errorf("Expected default driver '%s', got '%s'", config.DefaultDriver, entry.Driver)
	}
}

func TestAuditLogger_Close(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "audit.log")

	appender, _ := NewFileAppender(FileAppenderConfig{
		FilePath:   filePath,
		MaxSize:    10,
		MaxBackups: 2,
		Level:      LevelStandard,
		FormatJSON: false,
	})

	config := DefaultConfig()
	config.AsyncMode = true

	logger := NewLogger(config, appender)

	for i := 0; i < 5; i++ {
		logger.LogSuccess(context.Background(), OpQuery)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("Failed to close logger: %v", err)
	}

	err := logger.Log(context.Background(), NewEntry(OpQuery, StatusSuccess))
	if err == nil {
		t.Error("Expected error when logging after close")
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()

	err := logger.Log(context.Background(), NewEntry(OpQuery, StatusSuccess))
	if err != nil {
		t.Errorf("NullLogger should never return error, got: %v", err)
	}

	entry := logger.LogSuccess(context.Background(), OpQuery)
	if entry.Operation != OpQuery {
		t.Error("Expected valid entry from NullLogger")
	}

	if err := logger.Flush(); err != nil {
		t.Errorf("NullLogger.Flush should not error, got: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not error, got: %v", err)
	}
}
