package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ruslano69/esql-verify/pkg/core/interval"
)

// DriverName - the database/sql driver the production suite connects
// through
const DriverName = "odbc"

// Wire type names of the endpoint's SQL dialect mapped onto the numeric
// ODBC tag ids the output-converter registry is keyed by.
var typeTagIDs = map[string]int{
	"NULL":                      interval.NullTypeTag,
	"INTERVAL_YEAR":             101,
	"INTERVAL_MONTH":            102,
	"INTERVAL_DAY":              103,
	"INTERVAL_HOUR":             104,
	"INTERVAL_MINUTE":           105,
	"INTERVAL_SECOND":           106,
	"INTERVAL_YEAR_TO_MONTH":    107,
	"INTERVAL_DAY_TO_HOUR":      108,
	"INTERVAL_DAY_TO_MINUTE":    109,
	"INTERVAL_DAY_TO_SECOND":    110,
	"INTERVAL_HOUR_TO_MINUTE":   111,
	"INTERVAL_HOUR_TO_SECOND":   112,
	"INTERVAL_MINUTE_TO_SECOND": 113,
}

// SQLConnection implements Connection on top of a database/sql driver. All
// statements run on one dedicated session so that statement-handle reuse
// semantics (paging continuity) are observable.
type SQLConnection struct {
	db         *sql.DB
	conn       *sql.Conn
	dsn        string
	converters *interval.Registry
}

var _ Connection = (*SQLConnection)(nil)

// Connect opens a session against the ODBC driver under test.
func Connect(ctx context.Context, dsn string) (Connection, error) {
	return ConnectDriver(ctx, DriverName, dsn)
}

// ConnectDriver opens a session through an arbitrary registered
// database/sql driver. Tests exercise the wrapper through a local engine
// this way.
func ConnectDriver(ctx context.Context, driverName, dsn string) (*SQLConnection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLConnection{
		db:         db,
		conn:       conn,
		dsn:        dsn,
		converters: interval.NewRegistry(),
	}, nil
}

// Execute runs sqlText on the dedicated session.
func (c *SQLConnection) Execute(ctx context.Context, sqlText string) (Cursor, error) {
	rows, err := c.conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return newSQLCursor(rows, c.converters)
}

// Tables issues a table/catalog enumeration via the endpoint's SYS TABLES
// surface.
func (c *SQLConnection) Tables(ctx context.Context, table, catalog, schema string, tableTypes ...string) (Cursor, error) {
	return c.Execute(ctx, sysTablesStmt(table, catalog, tableTypes))
}

// Columns issues a column enumeration via the endpoint's SYS COLUMNS
// surface.
func (c *SQLConnection) Columns(ctx context.Context, table, catalog, schema, column string) (Cursor, error) {
	return c.Execute(ctx, sysColumnsStmt(table, catalog, column))
}

// GetInfo answers the attributes the suite checks. database/sql has no
// SQLGetInfo passthrough: the user name comes from the DSN, the catalog
// name from catalog enumeration.
func (c *SQLConnection) GetInfo(ctx context.Context, attr InfoAttr) (string, error) {
	switch attr {
	case InfoUserName:
		return dsnAttribute(c.dsn, "UID"), nil
	case InfoCatalogName:
		cur, err := c.Tables(ctx, "", "%", "", "")
		if err != nil {
			return "", err
		}
		rows, err := cur.FetchAll()
		if err != nil {
			return "", err
		}
		if len(rows) != 1 || len(rows[0]) == 0 {
			return "", fmt.Errorf("catalog enumeration returned %d rows, want 1", len(rows))
		}
		return valueString(rows[0][0]), nil
	default:
		return "", fmt.Errorf("unsupported info attribute %d", attr)
	}
}

// Converters returns the connection-scoped output-converter registry.
func (c *SQLConnection) Converters() *interval.Registry {
	return c.converters
}

// Close releases the session and the pool behind it.
func (c *SQLConnection) Close() error {
	var firstErr error
	if c.conn != nil {
		firstErr = c.conn.Close()
		c.conn = nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.db = nil
	}
	return firstErr
}

// dsnAttribute extracts a KEY=value attribute from a semicolon-separated
// connection string.
func dsnAttribute(dsn, key string) string {
	for _, part := range strings.Split(dsn, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// valueString renders a catalog cell for comparison; drivers disagree on
// string vs byte-slice columns.
func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// sqlCursor adapts *sql.Rows to the Cursor contract, applying any
// registered output converters to raw buffers of tagged columns.
type sqlCursor struct {
	rows      *sql.Rows
	cols      []string
	tags      []int
	reg       *interval.Registry
	exhausted bool
}

func newSQLCursor(rows *sql.Rows, reg *interval.Registry) (*sqlCursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}

	tags := make([]int, len(cols))
	types, err := rows.ColumnTypes()
	if err == nil && len(types) == len(cols) {
		for i, ct := range types {
			if id, ok := typeTagIDs[strings.ToUpper(ct.DatabaseTypeName())]; ok {
				tags[i] = id
			} else {
				tags[i] = -1
			}
		}
	} else {
		for i := range tags {
			tags[i] = -1
		}
	}

	return &sqlCursor{rows: rows, cols: cols, tags: tags, reg: reg}, nil
}

// Columns returns the result column names.
func (c *sqlCursor) Columns() []string {
	return append([]string(nil), c.cols...)
}

// FetchOne fetches the next row, running tagged raw buffers through the
// registered output converters.
func (c *sqlCursor) FetchOne() ([]any, bool, error) {
	if c.exhausted {
		return nil, false, nil
	}
	if !c.rows.Next() {
		c.exhausted = true
		if err := c.rows.Err(); err != nil {
			return nil, false, fmt.Errorf("row fetch failed: %w", err)
		}
		return nil, false, nil
	}

	values := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return nil, false, fmt.Errorf("row scan failed: %w", err)
	}

	if c.reg != nil {
		for i, v := range values {
			raw, isRaw := v.([]byte)
			if !isRaw || c.tags[i] < 0 {
				continue
			}
			if fn, ok := c.reg.Lookup(c.tags[i]); ok {
				converted, err := fn(raw)
				if err != nil {
					return nil, false, fmt.Errorf("output converter for tag %d failed: %w", c.tags[i], err)
				}
				values[i] = converted
			}
		}
	}

	return values, true, nil
}

// FetchAll drains the cursor and closes it.
func (c *sqlCursor) FetchAll() ([][]any, error) {
	defer c.Close()

	var out [][]any
	for {
		row, ok, err := c.FetchOne()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, row)
	}
}

// Close discards the cursor and any unconsumed pages.
func (c *sqlCursor) Close() error {
	c.exhausted = true
	return c.rows.Close()
}
