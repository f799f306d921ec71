package validators

import (
	"context"
	"fmt"
	"sort"

	"github.com/ruslano69/esql-verify/pkg/driver"
	"github.com/ruslano69/esql-verify/pkg/fixtures"
)

// ODBC catalog result-set column positions.
const (
	colTableCat   = 0
	colTableName  = 2
	colTableType  = 3
	colColumnName = 3
)

// CatalogValidator checks the driver's catalog, table-type, table and
// column enumeration endpoints against the known fixture schema.
type CatalogValidator struct {
	registry *fixtures.Registry
	catalog  string
}

// NewCatalogValidator creates a CatalogValidator; the expected catalog name
// comes from the fixture registry.
func NewCatalogValidator(registry *fixtures.Registry) *CatalogValidator {
	return &CatalogValidator{registry: registry, catalog: registry.Catalog()}
}

// VerifyCatalogs enumerates catalogs and requires exactly one row naming
// the known catalog, with every non-catalog-name field null. The type
// filter is passed either as an explicit empty string or omitted entirely;
// the driver must treat both the same way.
func (v *CatalogValidator) VerifyCatalogs(ctx context.Context, conn driver.Connection, withEmptyTypeFilter bool) error {
	var (
		cur driver.Cursor
		err error
	)
	if withEmptyTypeFilter {
		cur, err = conn.Tables(ctx, "", "%", "", "")
	} else {
		cur, err = conn.Tables(ctx, "", "%", "")
	}
	if err != nil {
		return err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}

	if len(rows) != 1 {
		return &MetadataMismatch{Check: "catalog enumeration",
			Detail: fmt.Sprintf("returned %d rows, want 1", len(rows))}
	}
	for i, field := range rows[0] {
		if i == colTableCat {
			if got := asString(field); got != v.catalog {
				return &MetadataMismatch{Check: "catalog enumeration",
					Detail: fmt.Sprintf("catalog name %q, want %q", got, v.catalog)}
			}
			continue
		}
		if field != nil {
			return &MetadataMismatch{Check: "catalog enumeration",
				Detail: fmt.Sprintf("field %d is %v, want null", i, field)}
		}
	}
	return nil
}

// VerifyTableTypes enumerates table types and requires exactly the two
// known types, in order, with all other fields null.
func (v *CatalogValidator) VerifyTableTypes(ctx context.Context, conn driver.Connection) error {
	cur, err := conn.Tables(ctx, "", "", "", "%")
	if err != nil {
		return err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}

	if len(rows) != 2 {
		return &MetadataMismatch{Check: "table type enumeration",
			Detail: fmt.Sprintf("returned %d rows, want 2", len(rows))}
	}
	expected := []string{"BASE TABLE", "VIEW"}
	for r, row := range rows {
		for i, field := range row {
			if i == colTableType {
				if got := asString(field); got != expected[r] {
					return &MetadataMismatch{Check: "table type enumeration",
						Detail: fmt.Sprintf("row %d type %q, want %q", r, got, expected[r])}
				}
				continue
			}
			if field != nil {
				return &MetadataMismatch{Check: "table type enumeration",
					Detail: fmt.Sprintf("row %d field %d is %v, want null", r, i, field)}
			}
		}
	}
	return nil
}

// VerifyTables lists tables of type TABLE and VIEW across all catalogs and
// requires the returned name set to cover every fixture index. The table
// pattern must be the match-all "%": an empty pattern alongside a real type
// filter is an ordinary LIKE matching only the empty name, not an
// enumeration form.
func (v *CatalogValidator) VerifyTables(ctx context.Context, conn driver.Connection) error {
	cur, err := conn.Tables(ctx, "%", "%", "", "TABLE,VIEW")
	if err != nil {
		return err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}

	listed := make(map[string]bool, len(rows))
	for _, row := range rows {
		if len(row) > colTableName {
			listed[asString(row[colTableName])] = true
		}
	}
	for _, index := range v.registry.IndexNames() {
		if !listed[index] {
			return &MetadataMismatch{Check: "table enumeration",
				Detail: fmt.Sprintf("fixture index %q missing from listing", index)}
		}
	}
	return nil
}

// VerifyColumns enumerates the columns of one fixture index and compares
// the name set, order-independently, with the index's declared properties.
//
// useSurrogate routes the request through a raw SYS COLUMNS statement
// instead of the structured catalog call: some transports do not reliably
// null-terminate names returned through the structured path, so the SQL
// text path exists as a cross-check. Both must agree with the fixture.
func (v *CatalogValidator) VerifyColumns(ctx context.Context, conn driver.Connection, index string, useCatalog, useSurrogate bool) error {
	expected, err := v.registry.Schema(index)
	if err != nil {
		return err
	}

	catalog := ""
	if useCatalog {
		catalog = v.catalog
	}

	var cur driver.Cursor
	if useSurrogate {
		cur, err = conn.Execute(ctx, driver.SysColumnsStmt(driver.EscapeLike(index), catalog, "%"))
	} else {
		cur, err = conn.Columns(ctx, index, catalog, "", "%")
	}
	if err != nil {
		return err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}

	have := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) <= colColumnName {
			return &MetadataMismatch{Check: "column enumeration",
				Detail: fmt.Sprintf("row has %d fields, column name position is %d", len(row), colColumnName)}
		}
		have = append(have, asString(row[colColumnName]))
	}
	sort.Strings(have)

	if len(have) != len(expected) {
		return &MetadataMismatch{Check: "column enumeration",
			Detail: fmt.Sprintf("index %q: got columns %v, want %v", index, have, expected)}
	}
	for i := range have {
		if have[i] != expected[i] {
			return &MetadataMismatch{Check: "column enumeration",
				Detail: fmt.Sprintf("index %q: got columns %v, want %v", index, have, expected)}
		}
	}
	return nil
}

// asString renders a catalog cell; drivers disagree on string vs byte
// slice columns.
func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
