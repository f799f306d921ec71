package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/esql-verify/pkg/audit"
	"github.com/ruslano69/esql-verify/pkg/resultlog"
)

// SuiteConfig — esqlverify configuration
type SuiteConfig struct {
	// Driver — database/sql driver name, "odbc" unless testing the harness
	// itself against another backend
	Driver string `yaml:"driver"`

	// DSN — connection string of the driver under test
	DSN string `yaml:"dsn"`

	// WCharSize — wide-character width of the driver's interval encoding,
	// 2 or 4 bytes
	WCharSize int `yaml:"wchar_size"`

	Fixtures FixturesSection `yaml:"fixtures"`
	Audit    AuditSection    `yaml:"audit"`

	// ResultLog — optional Redis publishing of the suite outcome
	ResultLog *resultlog.Config `yaml:"resultlog"`
}

// FixturesSection — where the expectation data lives
type FixturesSection struct {
	// Path — fixture YAML file, ".zst" suffix for compressed sets
	Path string `yaml:"path"`

	// Checksum — optional xxh3 (hex) of the decompressed file
	Checksum string `yaml:"checksum"`
}

// AuditSection — verification trail settings
type AuditSection struct {
	// File — trail file path; empty disables the file trail
	File string `yaml:"file"`

	// Level — minimal, standard or full
	Level string `yaml:"level"`

	// JSON — one JSON object per line instead of plain text
	JSON bool `yaml:"json"`

	// Console — mirror the trail to stdout
	Console bool `yaml:"console"`

	// MaxSizeMB, MaxBackups — rotation settings for the trail file
	MaxSizeMB  int64 `yaml:"max_size_mb"`
	MaxBackups int   `yaml:"max_backups"`
}

// loadConfig reads and validates the YAML config.
func loadConfig(path string) (*SuiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var cfg SuiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Driver == "" {
		cfg.Driver = "odbc"
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if cfg.Fixtures.Path == "" {
		return nil, fmt.Errorf("fixtures.path is required")
	}
	if cfg.WCharSize == 0 {
		cfg.WCharSize = 2
	}
	if cfg.WCharSize != 2 && cfg.WCharSize != 4 {
		return nil, fmt.Errorf("wchar_size must be 2 or 4, got %d", cfg.WCharSize)
	}
	if cfg.ResultLog != nil {
		if cfg.ResultLog.Address == "" {
			return nil, fmt.Errorf("resultlog.address is required")
		}
		if cfg.ResultLog.Name == "" {
			return nil, fmt.Errorf("resultlog.name is required")
		}
		if cfg.ResultLog.TTL == 0 {
			cfg.ResultLog.TTL = 3600
		}
	}

	return &cfg, nil
}

// auditLevel maps the config string to a trail level.
func auditLevel(s string) (audit.Level, error) {
	switch s {
	case "", "standard":
		return audit.LevelStandard, nil
	case "minimal":
		return audit.LevelMinimal, nil
	case "full":
		return audit.LevelFull, nil
	default:
		return 0, fmt.Errorf("unknown audit level %q (minimal/standard/full)", s)
	}
}

// buildLogger assembles the trail logger from the audit section.
func buildLogger(cfg AuditSection) (audit.Logger, error) {
	level, err := auditLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var appenders []audit.Appender
	if cfg.File != "" {
		fa, err := audit.NewFileAppender(audit.FileAppenderConfig{
			FilePath:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Level:      level,
			FormatJSON: cfg.JSON,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		appenders = append(appenders, fa)
	}
	if cfg.Console {
		appenders = append(appenders, audit.NewConsoleAppender(level, false))
	}
	if len(appenders) == 0 {
		return audit.NewNullLogger(), nil
	}

	return audit.NewLogger(audit.DefaultConfig(), appenders...), nil
}
