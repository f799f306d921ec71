package audit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger - trail recording interface the suite depends on
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	LogOperation(ctx context.Context, operation Operation, status Status) *Entry
	LogSuccess(ctx context.Context, operation Operation) *Entry
	LogFailure(ctx context.Context, operation Operation, err error) *Entry
	Flush() error
	Close() error
}

// AuditLogger - the standard Logger implementation. The suite runs checks
// strictly sequentially, so synchronous mode is the default; async exists
// for long full-scan runs where trail IO must not add to step timings.
type AuditLogger struct {
	appenders    []Appender
	asyncMode    bool
	bufferSize   int
	entryChannel chan *Entry
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	config       LoggerConfig
}

// LoggerConfig - logger settings
type LoggerConfig struct {
	// AsyncMode - buffer entries and write from a background goroutine
	AsyncMode bool

	// BufferSize - channel capacity for async mode
	BufferSize int

	// DefaultDriver - driver identity stamped on entries that lack one
	DefaultDriver string

	// FlushInterval - periodic flush interval (0 = disabled)
	FlushInterval time.Duration

	// OnError - callback invoked on append failures
	OnError func(error)
}

// NewLogger - create a logger writing to the given appenders
func NewLogger(config LoggerConfig, appenders ...Appender) *AuditLogger {
	ctx, cancel := context.WithCancel(context.Background())

	logger := &AuditLogger{
		appenders:  appenders,
		asyncMode:  config.AsyncMode,
		bufferSize: config.BufferSize,
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
	}

	if logger.bufferSize <= 0 {
		logger.bufferSize = 1000
	}

	if logger.asyncMode {
		logger.entryChannel = make(chan *Entry, logger.bufferSize)
		logger.wg.Add(1)
		go logger.processEntries()
	}

	if config.FlushInterval > 0 {
		logger.wg.Add(1)
		go logger.autoFlush()
	}

	return logger
}

// Log - record one entry
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	select {
	case <-l.ctx.Done():
		return fmt.Errorf("logger is closed")
	default:
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ID == "" {
		entry.ID = generateID()
	}
	if entry.Driver == "" && l.config.DefaultDriver != "" {
		entry.Driver = l.config.DefaultDriver
	}

	if l.asyncMode {
		select {
		case l.entryChannel <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Buffer full: fall back to a synchronous write.
			return l.writeEntry(ctx, entry)
		}
	}

	return l.writeEntry(ctx, entry)
}

// LogOperation - create and record an entry for one step
func (l *AuditLogger) LogOperation(ctx context.Context, operation Operation, status Status) *Entry {
	entry := NewEntry(operation, status)

	if err := l.Log(ctx, entry); err != nil {
		l.handleError(err)
	}

	return entry
}

// LogSuccess - record a passed step
func (l *AuditLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	return l.LogOperation(ctx, operation, StatusSuccess)
}

// LogFailure - record a failed step
func (l *AuditLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	entry := l.LogOperation(ctx, operation, StatusFailure)
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	return entry
}

// writeEntry - write the entry to all appenders
func (l *AuditLogger) writeEntry(ctx context.Context, entry *Entry) error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("appender failed: %w", err))
		}
	}

	return firstError
}

// processEntries - async-mode writer loop
func (l *AuditLogger) processEntries() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.entryChannel:
			if err := l.writeEntry(context.Background(), entry); err != nil {
				l.handleError(err)
			}

		case <-l.ctx.Done():
			l.drainChannel()
			return
		}
	}
}

// drainChannel - write whatever is still buffered
func (l *AuditLogger) drainChannel() {
	for {
		select {
		case entry := <-l.entryChannel:
			l.writeEntry(context.Background(), entry)
		default:
			return
		}
	}
}

// autoFlush - periodic flush loop
func (l *AuditLogger) autoFlush() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Flush()

		case <-l.ctx.Done():
			return
		}
	}
}

// Flush - flush every appender that supports it
func (l *AuditLogger) Flush() error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if flusher, ok := appender.(interface{ Flush() error }); ok {
			if err := flusher.Flush(); err != nil {
				if firstError == nil {
					firstError = err
				}
				l.handleError(fmt.Errorf("flush failed: %w", err))
			}
		}
	}

	return firstError
}

// Close - stop the writer loop, flush and close all appenders
func (l *AuditLogger) Close() error {
	l.cancel()
	l.wg.Wait()
	l.Flush()

	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error

	for _, appender := range appenders {
		if err := appender.Close(); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("close failed: %w", err))
		}
	}

	return firstError
}

// AddAppender - attach an appender
func (l *AuditLogger) AddAppender(appender Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.appenders = append(l.appenders, appender)
}

// handleError - forward an internal error to the callback
func (l *AuditLogger) handleError(err error) {
	if l.config.OnError != nil {
		l.config.OnError(err)
	}
}

// DefaultConfig - synchronous logging. Detail levels live on the
// appenders, which each filter what they record.
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		AsyncMode:     false,
		BufferSize:    0,
		FlushInterval: 0,
		OnError:       nil,
	}
}

// NullLogger - discards everything (tests)
type NullLogger struct{}

// NewNullLogger - create a null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Log - noop
func (nl *NullLogger) Log(ctx context.Context, entry *Entry) error {
	return nil
}

// LogOperation - returns the entry without recording it
func (nl *NullLogger) LogOperation(ctx context.Context, operation Operation, status Status) *Entry {
	return NewEntry(operation, status)
}

// LogSuccess - noop
func (nl *NullLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	return NewEntry(operation, StatusSuccess)
}

// LogFailure - noop
func (nl *NullLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	return NewEntry(operation, StatusFailure)
}

// Flush - noop
func (nl *NullLogger) Flush() error {
	return nil
}

// Close - noop
func (nl *NullLogger) Close() error {
	return nil
}
