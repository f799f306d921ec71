package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileAppender - trail file with size-based rotation
type FileAppender struct {
	mu          sync.Mutex
	file        *os.File
	filePath    string
	maxSize     int64
	maxBackups  int
	currentSize int64
	level       Level
	formatJSON  bool
}

// FileAppenderConfig - file appender settings
type FileAppenderConfig struct {
	FilePath   string
	MaxSize    int64 // megabytes
	MaxBackups int
	Level      Level
	FormatJSON bool
}

// NewFileAppender - open (or create) the trail file
func NewFileAppender(config FileAppenderConfig) (*FileAppender, error) {
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	maxSize := config.MaxSize
	if maxSize == 0 {
		maxSize = 100
	}

	maxBackups := config.MaxBackups
	if maxBackups == 0 {
		maxBackups = 5
	}

	return &FileAppender{
		file:        file,
		filePath:    config.FilePath,
		maxSize:     maxSize * 1024 * 1024,
		maxBackups:  maxBackups,
		currentSize: fileInfo.Size(),
		level:       config.Level,
		formatJSON:  config.FormatJSON,
	}, nil
}

// Append - write one entry, rotating first if the file would overflow
func (fa *FileAppender) Append(ctx context.Context, entry *Entry) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	filtered := entry.FilterByLevel(fa.level)

	var data []byte
	var err error

	if fa.formatJSON {
		data, err = filtered.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = []byte(filtered.String() + "\n")
	}

	if fa.currentSize+int64(len(data)) > fa.maxSize {
		if err := fa.rotate(); err != nil {
			return fmt.Errorf("failed to rotate file: %w", err)
		}
	}

	n, err := fa.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	fa.currentSize += int64(n)
	return nil
}

// rotate - shift backups up and start a fresh file
func (fa *FileAppender) rotate() error {
	if err := fa.file.Close(); err != nil {
		return err
	}

	for i := fa.maxBackups - 1; i > 0; i-- {
		oldPath := fmt.Sprintf("%s.%d", fa.filePath, i)
		newPath := fmt.Sprintf("%s.%d", fa.filePath, i+1)

		if _, err := os.Stat(oldPath); err == nil {
			if i+1 > fa.maxBackups {
				os.Remove(newPath)
			}
			os.Rename(oldPath, newPath)
		}
	}

	backupPath := fmt.Sprintf("%s.1", fa.filePath)
	if err := os.Rename(fa.filePath, backupPath); err != nil {
		return err
	}

	file, err := os.OpenFile(fa.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	fa.file = file
	fa.currentSize = 0

	return nil
}

// Close - close the trail file
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Close()
	}

	return nil
}

// Flush - fsync the trail file
func (fa *FileAppender) Flush() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Sync()
	}

	return nil
}

// CurrentSize - bytes written to the active file
func (fa *FileAppender) CurrentSize() int64 {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.currentSize
}

// FilePath - path of the active trail file
func (fa *FileAppender) FilePath() string {
	return fa.filePath
}

// ConsoleAppender - trail on stdout, failures optionally on stderr
type ConsoleAppender struct {
	level      Level
	formatJSON bool
	useStderr  bool
}

// NewConsoleAppender - create a console appender
func NewConsoleAppender(level Level, formatJSON bool) *ConsoleAppender {
	return &ConsoleAppender{
		level:      level,
		formatJSON: formatJSON,
		useStderr:  false,
	}
}

// Append - print one entry
func (ca *ConsoleAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(ca.level)

	var output string
	if ca.formatJSON {
		data, err := filtered.ToJSONIndent()
		if err != nil {
			return err
		}
		output = string(data)
	} else {
		output = filtered.String()
	}

	if ca.useStderr && entry.Status == StatusFailure {
		fmt.Fprintln(os.Stderr, output)
	} else {
		fmt.Println(output)
	}

	return nil
}

// Close - noop
func (ca *ConsoleAppender) Close() error {
	return nil
}

// NullAppender - discards everything (tests)
type NullAppender struct{}

// NewNullAppender - create a null appender
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

// Append - noop
func (na *NullAppender) Append(ctx context.Context, entry *Entry) error {
	return nil
}

// Close - noop
func (na *NullAppender) Close() error {
	return nil
}
