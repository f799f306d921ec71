package driver

import (
	"fmt"
	"strings"
)

// The endpoint under test has no separate catalog protocol: ODBC's
// SQLTables/SQLColumns map onto its SYS TABLES / SYS COLUMNS statements.
// The builders below produce those statements; the column layout of their
// result sets follows the ODBC catalog functions (TABLE_CAT at index 0,
// TABLE_NAME at 2, TABLE_TYPE at 3 for tables; COLUMN_NAME at 3 for
// columns).

// EscapeLike escapes the LIKE metacharacters in a literal name so it
// matches itself and nothing else.
func EscapeLike(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(name)
}

// sysTablesStmt builds a SYS TABLES statement. typeFilter distinguishes an
// absent filter (nil) from an empty one; both forms omit the TYPE clause,
// the distinction only matters at the call surface.
func sysTablesStmt(table, catalog string, typeFilter []string) string {
	var b strings.Builder
	b.WriteString("SYS TABLES")
	if catalog != "" {
		fmt.Fprintf(&b, " CATALOG LIKE '%s' ESCAPE '\\'", catalog)
	}
	fmt.Fprintf(&b, " LIKE '%s' ESCAPE '\\'", table)

	types := make([]string, 0, len(typeFilter))
	for _, t := range typeFilter {
		for _, part := range strings.Split(t, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				types = append(types, part)
			}
		}
	}
	if len(types) > 0 {
		b.WriteString(" TYPE ")
		for i, t := range types {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "'%s'", t)
		}
	}
	return b.String()
}

// sysColumnsStmt builds a SYS COLUMNS statement, optionally
// catalog-qualified. table and column are LIKE patterns.
func sysColumnsStmt(table, catalog, column string) string {
	var b strings.Builder
	b.WriteString("SYS COLUMNS")
	if catalog != "" {
		fmt.Fprintf(&b, " CATALOG '%s'", catalog)
	}
	if column == "" {
		column = "%"
	}
	fmt.Fprintf(&b, " TABLE LIKE '%s' ESCAPE '\\' LIKE '%s' ESCAPE '\\'", table, column)
	return b.String()
}

// SysColumnsStmt exposes the surrogate column-enumeration statement. The
// catalog validator cross-checks the structured Columns call against a raw
// execution of this text, because some transports do not reliably
// null-terminate names returned through the structured call.
func SysColumnsStmt(table, catalog, column string) string {
	return sysColumnsStmt(table, catalog, column)
}
