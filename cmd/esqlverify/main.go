// esqlverify validates a SQL-over-ODBC driver against a known fixture set:
// type conversion, interval decoding, CSV integrity, paged-cursor reuse and
// the catalog surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ruslano69/esql-verify/pkg/fixtures"
	"github.com/ruslano69/esql-verify/pkg/resultlog"
)

func main() {
	configFile := flag.String("config", "", "path to suite config YAML (required)")
	dsn := flag.String("dsn", "", "connection string, overrides config value")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: esqlverify --config <name>.yaml [--dsn <connection string>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fmt.Fprintln(os.Stderr, "  --config  path to YAML config file (required)")
		fmt.Fprintln(os.Stderr, "  --dsn     connection string of the driver under test, overrides config")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Verification failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Verification passed")
}

func run(cfg *SuiteConfig) error {
	registry, err := fixtures.Load(cfg.Fixtures.Path, cfg.Fixtures.Checksum)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	logger, err := buildLogger(cfg.Audit)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := context.Background()
	s := newSuite(cfg, registry, logger)

	started := time.Now()
	execErr := s.run(ctx)
	finished := time.Now()

	if cfg.ResultLog != nil {
		publisher := resultlog.NewRedisPublisher(*cfg.ResultLog)
		defer publisher.Close()

		result := resultlog.SuiteResult{
			Checks:     s.checks,
			Skipped:    s.skipped,
			StartedAt:  started,
			FinishedAt: finished,
		}
		if execErr != nil {
			result.Failures = 1
		}
		if err := publisher.Publish(ctx, result, execErr); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: result publish failed: %v\n", err)
		}
	}

	return execErr
}
