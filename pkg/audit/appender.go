package audit

import (
	"context"
)

// Appender - sink for verification trail entries
type Appender interface {
	// Append - write one entry
	Append(ctx context.Context, entry *Entry) error

	// Close - release the sink
	Close() error
}

// MultiAppender - fan-out to several appenders
type MultiAppender struct {
	appenders []Appender
}

// NewMultiAppender - create a multi appender
func NewMultiAppender(appenders ...Appender) *MultiAppender {
	return &MultiAppender{
		appenders: appenders,
	}
}

// Append - write to every appender; the first error wins, the rest still run
func (ma *MultiAppender) Append(ctx context.Context, entry *Entry) error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Append(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Close - close every appender
func (ma *MultiAppender) Close() error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Add - attach another appender
func (ma *MultiAppender) Add(appender Appender) {
	ma.appenders = append(ma.appenders, appender)
}
