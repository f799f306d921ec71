// Package audit records what the verification suite did against the driver:
// every connect, catalog probe, reconstruction and proto-test run leaves an
// entry, so a failing run can be replayed from its trail alone.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Level - detail level of the recorded trail
type Level int

const (
	// LevelMinimal - operation, status and resource only
	LevelMinimal Level = iota

	// LevelStandard - adds counts, durations and error text
	LevelStandard

	// LevelFull - adds the executed SQL text and extra metadata
	LevelFull
)

// String - textual level name
func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelStandard:
		return "standard"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Operation - the verification step being recorded
type Operation string

const (
	OpConnect     Operation = "connect"
	OpDisconnect  Operation = "disconnect"
	OpInfo        Operation = "info"
	OpQuery       Operation = "query"
	OpCatalog     Operation = "catalog"
	OpColumns     Operation = "columns"
	OpReconstruct Operation = "reconstruct"
	OpCount       Operation = "count"
	OpPaging      Operation = "paging"
	OpProto       Operation = "proto"
)

// Status - outcome of one verification step
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Entry - one record in the verification trail
type Entry struct {
	// ID - unique record identifier
	ID string `json:"id"`

	// Timestamp - when the step ran
	Timestamp time.Time `json:"timestamp"`

	// Operation - the verification step
	Operation Operation `json:"operation"`

	// Status - outcome
	Status Status `json:"status"`

	// Driver - DSN or driver name the step ran against
	Driver string `json:"driver,omitempty"`

	// Resource - index or catalog object the step touched
	Resource string `json:"resource,omitempty"`

	// Query - executed SQL text (LevelFull only)
	Query string `json:"query,omitempty"`

	// RowsChecked - number of rows the step consumed
	RowsChecked int64 `json:"rows_checked,omitempty"`

	// Duration - how long the step took
	Duration time.Duration `json:"duration,omitempty"`

	// ErrorMessage - failure detail
	ErrorMessage string `json:"error_message,omitempty"`

	// Metadata - extra step-specific fields (LevelFull only)
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEntry - create a trail entry
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithDriver - set the driver identity
func (e *Entry) WithDriver(driver string) *Entry {
	e.Driver = driver
	return e
}

// WithResource - set the touched index or catalog object
func (e *Entry) WithResource(resource string) *Entry {
	e.Resource = resource
	return e
}

// WithQuery - set the executed SQL text
func (e *Entry) WithQuery(query string) *Entry {
	e.Query = query
	return e
}

// WithRowsChecked - set the consumed row count
func (e *Entry) WithRowsChecked(count int64) *Entry {
	e.RowsChecked = count
	return e
}

// WithDuration - set the step duration
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError - record the failure; flips the status
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithMetadata - attach a step-specific field
func (e *Entry) WithMetadata(key string, value interface{}) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ToJSON - marshal the entry
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToJSONIndent - marshal the entry with indentation
func (e *Entry) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// String - single-line rendering for plain-text trails
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s (resource=%s, rows=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.Resource,
		e.RowsChecked,
		e.Duration,
	)
}

// Clone - deep copy of the entry
func (e *Entry) Clone() *Entry {
	clone := *e

	if e.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// FilterByLevel - strip fields above the given detail level
func (e *Entry) FilterByLevel(level Level) *Entry {
	filtered := e.Clone()

	switch level {
	case LevelMinimal:
		filtered.Query = ""
		filtered.Metadata = nil
		filtered.RowsChecked = 0
		filtered.Duration = 0

	case LevelStandard:
		filtered.Query = ""
		filtered.Metadata = nil

	case LevelFull:
	}

	return filtered
}

// generateID - unique entry id
func generateID() string {
	return fmt.Sprintf("audit-%d-%d",
		time.Now().UnixNano(),
		time.Now().Unix()%1000,
	)
}
