package validators

import (
	"context"
	"fmt"

	"github.com/ruslano69/esql-verify/pkg/driver"
	"github.com/ruslano69/esql-verify/pkg/fixtures"
)

// Page-size constraints for the continuity check: the scan is fetched in
// pages of pagingFetchSize rows, and exactly pagingPartialRows of them are
// consumed, so no page boundary is crossed before the handle is reused.
const (
	pagingFetchSize   = 5
	pagingPartialRows = 3

	// defaultFetchSizeAttr is appended to the DSN to force the page size on
	// the driver under test.
	defaultFetchSizeAttr = "MaxFetchSize=5"
)

// CursorValidator checks row-count exhaustion and paged-cursor reuse
// behavior against the fixture expectations.
type CursorValidator struct {
	registry *fixtures.Registry

	// FetchSizeAttr - DSN attribute constraining the page size for the
	// continuity check; empty leaves the DSN untouched (test backends
	// without the attribute)
	FetchSizeAttr string
}

// NewCursorValidator creates a CursorValidator over the fixture registry.
func NewCursorValidator(registry *fixtures.Registry) *CursorValidator {
	return &CursorValidator{
		registry:      registry,
		FetchSizeAttr: defaultFetchSizeAttr,
	}
}

// VerifyCount scans the index one row at a time and compares the number of
// rows consumed with the fixture's CSV line count.
func (v *CursorValidator) VerifyCount(ctx context.Context, conn driver.Connection, index string) error {
	attrs, err := v.registry.CsvAttributes(index)
	if err != nil {
		return err
	}

	cur, err := conn.Execute(ctx, fmt.Sprintf("select 1 from %s", index))
	if err != nil {
		return err
	}
	defer cur.Close()

	count := 0
	for {
		_, ok, err := cur.FetchOne()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		count++
	}

	if count != attrs.RowCount {
		return &CountMismatch{Index: index, Expected: attrs.RowCount, Actual: count}
	}
	return nil
}

// VerifyPagingContinuity opens a dedicated session with a constrained page
// size, consumes strictly fewer rows than one page, then reuses the same
// session for a fresh unrestricted query and drains it fully. Any error
// along the way means a partially-consumed paged cursor leaked stale
// continuation state into the handle reuse.
func (v *CursorValidator) VerifyPagingContinuity(ctx context.Context, connect driver.ConnectFunc, dsn, index string) error {
	if v.FetchSizeAttr != "" {
		dsn = dsn + ";" + v.FetchSizeAttr
	}

	conn, err := connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("paging connection failed: %w", err)
	}
	defer conn.Close()

	cur, err := conn.Execute(ctx, fmt.Sprintf("select 1 from %s limit %d", index, 2*pagingFetchSize))
	if err != nil {
		return err
	}
	for i := 0; i < pagingPartialRows; i++ {
		if _, ok, err := cur.FetchOne(); err != nil {
			cur.Close()
			return err
		} else if !ok {
			cur.Close()
			return fmt.Errorf("index %q exhausted after %d rows, need at least %d for the paging check",
				index, i, pagingPartialRows)
		}
	}
	// Discard the partially-consumed cursor; pending pages must not
	// survive into the next statement on this handle.
	if err := cur.Close(); err != nil {
		return err
	}

	cur2, err := conn.Execute(ctx, fmt.Sprintf("select 1 from %s", index))
	if err != nil {
		return fmt.Errorf("statement reuse after partial page consumption failed: %w", err)
	}
	if _, err := cur2.FetchAll(); err != nil {
		return fmt.Errorf("full drain after statement reuse failed: %w", err)
	}
	return nil
}
