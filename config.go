package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/alc6/mig2sqlite/formatter"
	"github.com/alc6/mig2sqlite/providers"
)

const (
	DefaultConfigFile = "mig2sqlite.yaml"
	envPrefix         = "MIG2SQLITE_"
)

// Config holds the settings of a run. Per-table entries carry the schema
// annotations SQLite DDL needs but migrations cannot express.
type Config struct {
	LogLevel      string                 `koanf:"log_level"`
	Source        string                 `koanf:"source"`
	PostgresImage string                 `koanf:"postgres_image"`
	Extract       bool                   `koanf:"extract"`
	Verify        bool                   `koanf:"verify"`
	Indent        string                 `koanf:"indent"`
	Tables        map[string]TableConfig `koanf:"tables"`
}

type TableConfig struct {
	Columns map[string]ColumnConfig `koanf:"columns"`
	Indexes map[string]IndexConfig  `koanf:"indexes"`
}

type ColumnConfig struct {
	// Collate is a collation directive such as "NoCase" or "Custom:name".
	Collate    string `koanf:"collate"`
	RowVersion bool   `koanf:"row_version"`
	// StoreType overrides the SQLite type resolved from the source type.
	StoreType string `koanf:"store_type"`
}

type IndexConfig struct {
	// Unique is a conflict directive such as "OnConflict:Replace".
	Unique string `koanf:"unique"`
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":      "info",
		"source":         string(providers.DialectPostgres),
		"postgres_image": DefaultPostgresImage,
		"extract":        false,
		"verify":         false,
		"indent":         "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		slog.Debug("loaded config file", "file", cfgFile)
	}

	// MIG2SQLITE_POSTGRES_IMAGE -> postgres_image
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	switch providers.Dialect(c.Source) {
	case providers.DialectPostgres, providers.DialectSQLite:
	default:
		return fmt.Errorf("invalid source %q, expected %s or %s", c.Source, providers.DialectPostgres, providers.DialectSQLite)
	}
	if _, err := c.WriterOptions(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var indentCountPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

// WriterOptions translates Indent: empty keeps the default unit, "tab" means
// a tab, a decimal number means that many spaces and anything else is used
// verbatim. Leading zeros do not switch the base, "010" is ten spaces.
func (c *Config) WriterOptions() ([]formatter.WriterOption, error) {
	indent := c.Indent
	switch {
	case indent == "":
		return nil, nil
	case strings.EqualFold(indent, "tab"):
		indent = "\t"
	default:
		if indentCountPattern.MatchString(indent) {
			n, err := strconv.Atoi(indent)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid indent %q: %w", c.Indent, formatter.ErrInvalidIndentUnit)
			}
			indent = strings.Repeat(" ", n)
		}
	}

	opts := []formatter.WriterOption{formatter.WithIndentUnit(indent)}
	// Fail here rather than once per rendered table.
	w, err := formatter.NewIndentedWriter(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid indent %q: %w", c.Indent, err)
	}
	w.Close()
	return opts, nil
}

// ApplyAnnotations attaches the configured column and index settings to the
// extracted tables. Table, column and index names match case-insensitively.
func (c *Config) ApplyAnnotations(tables []providers.Table) {
	for name, tc := range c.Tables {
		ti := findTable(tables, name)
		if ti < 0 {
			slog.Warn("configured table not found in schema", "table", name)
			continue
		}
		table := &tables[ti]

		for colName, cc := range tc.Columns {
			ci := findColumn(table.Columns, colName)
			if ci < 0 {
				slog.Warn("configured column not found", "table", table.Name, "column", colName)
				continue
			}
			col := &table.Columns[ci]
			if cc.Collate != "" {
				col.SetAnnotation(formatter.AnnotationCollate, cc.Collate)
			}
			if cc.RowVersion {
				col.IsRowVersion = true
			}
			if cc.StoreType != "" {
				col.StoreType = cc.StoreType
			}
		}

		for idxName, ic := range tc.Indexes {
			ii := findIndex(table.Indexes, idxName)
			if ii < 0 {
				slog.Warn("configured index not found", "table", table.Name, "index", idxName)
				continue
			}
			if ic.Unique != "" {
				table.Indexes[ii].SetAnnotation(formatter.AnnotationUnique, ic.Unique)
			}
		}
	}
}

func findTable(tables []providers.Table, name string) int {
	for i := range tables {
		if strings.EqualFold(tables[i].Name, name) {
			return i
		}
	}
	return -1
}

func findColumn(columns []providers.Column, name string) int {
	for i := range columns {
		if strings.EqualFold(columns[i].Name, name) {
			return i
		}
	}
	return -1
}

func findIndex(indexes []providers.Index, name string) int {
	for i := range indexes {
		if strings.EqualFold(indexes[i].Name, name) {
			return i
		}
	}
	return -1
}
