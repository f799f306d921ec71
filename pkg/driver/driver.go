// Package driver wraps the SQL/ODBC endpoint under test behind a minimal
// row-source abstraction: scoped connections, forward-only cursors, catalog
// calls and a couple of info attributes. The endpoint itself is a black box;
// nothing here interprets query semantics.
package driver

import (
	"context"

	"github.com/ruslano69/esql-verify/pkg/core/interval"
)

// InfoAttr identifies a connection attribute queried through GetInfo.
type InfoAttr int

const (
	// InfoUserName - the authenticated user, answered from the DSN since
	// database/sql exposes no SQLGetInfo
	InfoUserName InfoAttr = iota + 1

	// InfoCatalogName - the single catalog the endpoint exposes, answered
	// from catalog enumeration
	InfoCatalogName
)

// Connection is one session with the driver under test. Implementations
// must release the underlying handle on Close regardless of prior errors.
type Connection interface {
	// Execute runs sqlText and returns a cursor over its result rows.
	Execute(ctx context.Context, sqlText string) (Cursor, error)

	// Tables issues a catalog/table enumeration. table, catalog and schema
	// are LIKE patterns; tableTypes is variadic to distinguish an absent
	// type filter (no argument) from an empty one ("").
	Tables(ctx context.Context, table, catalog, schema string, tableTypes ...string) (Cursor, error)

	// Columns issues a column enumeration for tables matching the given
	// patterns. Empty catalog means unqualified.
	Columns(ctx context.Context, table, catalog, schema, column string) (Cursor, error)

	// GetInfo answers a connection attribute.
	GetInfo(ctx context.Context, attr InfoAttr) (string, error)

	// Converters returns this connection's output-converter registry.
	// Registered converters apply to raw column buffers whose wire type
	// tag matches; the registry never outlives the connection.
	Converters() *interval.Registry

	// Close releases the session.
	Close() error
}

// Cursor is a forward-only result cursor. FetchOne returns (row, true, nil)
// while rows remain and (nil, false, nil) at end of set.
type Cursor interface {
	// Columns returns the result column names in order.
	Columns() []string

	// FetchOne fetches the next row.
	FetchOne() ([]any, bool, error)

	// FetchAll drains the remaining rows and closes the cursor.
	FetchAll() ([][]any, error)

	// Close discards the cursor, including any unconsumed pages.
	Close() error
}

// ConnectFunc opens a new connection for the given DSN. Validators that
// need a dedicated session (paging checks) take one of these instead of a
// live connection.
type ConnectFunc func(ctx context.Context, dsn string) (Connection, error)
