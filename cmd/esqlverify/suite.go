package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/esql-verify/pkg/audit"
	"github.com/ruslano69/esql-verify/pkg/core/interval"
	"github.com/ruslano69/esql-verify/pkg/driver"
	"github.com/ruslano69/esql-verify/pkg/fixtures"
	"github.com/ruslano69/esql-verify/pkg/runner"
	"github.com/ruslano69/esql-verify/pkg/validators"
)

// suite runs the verification steps in a fixed order against one
// connection. The first failure aborts; every step leaves a trail entry.
type suite struct {
	cfg      *SuiteConfig
	registry *fixtures.Registry
	logger   audit.Logger

	checks  int
	skipped int
}

func newSuite(cfg *SuiteConfig, registry *fixtures.Registry, logger audit.Logger) *suite {
	return &suite{cfg: cfg, registry: registry, logger: logger}
}

// step runs one verification step, records it and counts it.
func (s *suite) step(ctx context.Context, op audit.Operation, resource string, fn func() error) error {
	start := time.Now()
	err := fn()
	entry := audit.NewEntry(op, audit.StatusSuccess).
		WithResource(resource).
		WithDuration(time.Since(start)).
		WithError(err)
	if logErr := s.logger.Log(ctx, entry); logErr != nil && err == nil {
		err = logErr
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, resource, err)
	}
	s.checks++
	return nil
}

func (s *suite) connect(ctx context.Context) (driver.Connection, error) {
	return driver.ConnectDriver(ctx, s.cfg.Driver, s.cfg.DSN)
}

// run executes the whole suite: connection info, catalog surface, CSV
// integrity, counts, cursor reuse, full scans, then the proto cases.
func (s *suite) run(ctx context.Context) error {
	var conn driver.Connection
	if err := s.step(ctx, audit.OpConnect, s.cfg.Driver, func() error {
		var err error
		conn, err = s.connect(ctx)
		return err
	}); err != nil {
		return err
	}
	defer conn.Close()

	if err := s.verifyInfo(ctx, conn); err != nil {
		return err
	}
	if err := s.verifyCatalog(ctx, conn); err != nil {
		return err
	}
	if err := s.verifyIndices(ctx, conn); err != nil {
		return err
	}
	return s.runProtoCases(ctx, conn)
}

// verifyInfo checks the connection self-description: the user name must be
// answerable and the reported catalog must be the fixture catalog.
func (s *suite) verifyInfo(ctx context.Context, conn driver.Connection) error {
	return s.step(ctx, audit.OpInfo, s.registry.Catalog(), func() error {
		if _, err := conn.GetInfo(ctx, driver.InfoUserName); err != nil {
			return fmt.Errorf("user name: %w", err)
		}
		catalog, err := conn.GetInfo(ctx, driver.InfoCatalogName)
		if err != nil {
			return fmt.Errorf("catalog name: %w", err)
		}
		if catalog != s.registry.Catalog() {
			return fmt.Errorf("connection reports catalog %q, fixtures expect %q",
				catalog, s.registry.Catalog())
		}
		return nil
	})
}

// verifyCatalog probes the catalog surface: catalog enumeration with the
// type filter both empty and absent, table types, table listing, and per
// index the column set through the structured call and through the raw SYS
// COLUMNS statement.
func (s *suite) verifyCatalog(ctx context.Context, conn driver.Connection) error {
	v := validators.NewCatalogValidator(s.registry)

	if err := s.step(ctx, audit.OpCatalog, "catalogs", func() error {
		if err := v.VerifyCatalogs(ctx, conn, true); err != nil {
			return err
		}
		return v.VerifyCatalogs(ctx, conn, false)
	}); err != nil {
		return err
	}

	if err := s.step(ctx, audit.OpCatalog, "table types", func() error {
		return v.VerifyTableTypes(ctx, conn)
	}); err != nil {
		return err
	}

	if err := s.step(ctx, audit.OpCatalog, "tables", func() error {
		return v.VerifyTables(ctx, conn)
	}); err != nil {
		return err
	}

	for _, index := range s.registry.IndexNames() {
		if err := s.step(ctx, audit.OpColumns, index, func() error {
			if err := v.VerifyColumns(ctx, conn, index, false, false); err != nil {
				return err
			}
			return v.VerifyColumns(ctx, conn, index, true, true)
		}); err != nil {
			return err
		}
	}
	return nil
}

// verifyIndices checks data integrity per index: CSV digest, row count,
// paged-cursor reuse on a dedicated session, and a full scan.
func (s *suite) verifyIndices(ctx context.Context, conn driver.Connection) error {
	rec := validators.NewReconstructor(s.registry)
	cur := validators.NewCursorValidator(s.registry)

	for _, index := range s.registry.IndexNames() {
		attrs, err := s.registry.CsvAttributes(index)
		if err != nil {
			return err
		}

		if attrs.Digest != "" {
			if err := s.step(ctx, audit.OpReconstruct, index, func() error {
				return rec.Verify(ctx, conn, index)
			}); err != nil {
				return err
			}
		}

		if err := s.step(ctx, audit.OpCount, index, func() error {
			return cur.VerifyCount(ctx, conn, index)
		}); err != nil {
			return err
		}

		if err := s.step(ctx, audit.OpPaging, index, func() error {
			return cur.VerifyPagingContinuity(ctx, s.pagingConnect, s.cfg.DSN, index)
		}); err != nil {
			return err
		}

		if err := s.step(ctx, audit.OpQuery, index, func() error {
			return s.fullScan(ctx, conn, index, attrs.RowCount)
		}); err != nil {
			return err
		}
	}
	return nil
}

// pagingConnect opens the dedicated constrained-page-size session for the
// cursor-reuse check.
func (s *suite) pagingConnect(ctx context.Context, dsn string) (driver.Connection, error) {
	return driver.ConnectDriver(ctx, s.cfg.Driver, dsn)
}

// fullScan drains select * over the index and compares the row count.
func (s *suite) fullScan(ctx context.Context, conn driver.Connection, index string, expected int) error {
	cur, err := conn.Execute(ctx, fmt.Sprintf("select * from %s", index))
	if err != nil {
		return err
	}
	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}
	if len(rows) != expected {
		return fmt.Errorf("full scan of %q returned %d rows, want %d", index, len(rows), expected)
	}
	return nil
}

// runProtoCases executes the fixture's proto-test table.
func (s *suite) runProtoCases(ctx context.Context, conn driver.Connection) error {
	cases := s.registry.ProtoCases()
	if len(cases) == 0 {
		return nil
	}

	decoder, err := interval.NewDecoder(s.cfg.WCharSize)
	if err != nil {
		return err
	}
	r := runner.New(decoder)
	return s.step(ctx, audit.OpProto, fmt.Sprintf("%d cases", len(cases)), func() error {
		res, err := r.Run(ctx, conn, cases)
		if err != nil {
			return err
		}
		s.checks += res.Passed
		s.skipped += res.Skipped
		return nil
	})
}
