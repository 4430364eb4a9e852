package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/internal"
	"go.uber.org/zap"
)

type introspectOptions struct {
	source     string
	host       string
	port       int
	database   string
	user       string
	password   string
	sslMode    string
	schema     string
	duckdbPath string
	outDir     string
	tables     string
	force      bool
}

func runIntrospect(args []string) error {
	flags := flag.NewFlagSet("introspect", flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Println("Usage: nilability-tools introspect [options]")
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}

	opts := introspectOptions{}
	flags.StringVar(&opts.source, "source", getenvDefault("COLUMN_SOURCE", "postgres"), "postgres or duckdb")
	flags.StringVar(&opts.host, "db-host", getenvDefault("DB_HOST", "localhost"), "database host")
	flags.IntVar(&opts.port, "db-port", getenvDefaultInt("DB_PORT", 5432), "database port")
	flags.StringVar(&opts.database, "db-name", getenvDefault("DB_NAME", "postgres"), "database name")
	flags.StringVar(&opts.user, "db-user", getenvDefault("DB_USER", "postgres"), "database user")
	flags.StringVar(&opts.password, "db-password", getenvDefault("DB_PASSWORD", ""), "database password")
	flags.StringVar(&opts.sslMode, "db-ssl-mode", getenvDefault("DB_SSL_MODE", "disable"), "database sslmode")
	flags.StringVar(&opts.schema, "db-schema", getenvDefault("DB_SCHEMA", ""), "database schema (public for postgres, main for duckdb)")
	flags.StringVar(&opts.duckdbPath, "duckdb-path", getenvDefault("DUCKDB_PATH", ""), "DuckDB database file")
	flags.StringVar(&opts.outDir, "out", "schemas", "directory to write record documents into")
	flags.StringVar(&opts.tables, "tables", "", "comma separated table names (default: all); record names singularize regular plurals only")
	flags.BoolVar(&opts.force, "force", false, "overwrite existing documents")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx := context.Background()
	source, closeSource, err := opts.columnSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	written, err := introspect(ctx, source, splitTables(opts.tables), opts.outDir, opts.force)
	if err != nil {
		return err
	}
	zap.S().Infow("introspection complete", "source", source.Describe(), "written", written, "out", opts.outDir)
	return nil
}

func (o introspectOptions) columnSource(ctx context.Context) (internal.ColumnSource, func(), error) {
	switch nilability.ColumnSourceKind(o.source) {
	case nilability.ColumnSourcePostgres:
		cfg := nilability.DefaultConfig().Database
		cfg.Host, cfg.Port, cfg.Database = o.host, o.port, o.database
		cfg.Username, cfg.Password, cfg.SSLMode = o.user, o.password, o.sslMode
		pool, err := internal.NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return internal.NewPostgresColumnSource(pool, o.schema), pool.Close, nil
	case nilability.ColumnSourceDuckDB:
		src, err := internal.NewDuckDBColumnSource(nilability.DuckDBConfig{DBPath: o.duckdbPath, Schema: o.schema, QueryTimeout: 30 * time.Second})
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported source %q", o.source)
	}
}

func splitTables(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tables []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

// introspect writes <table>.json for each table and returns how many files were written.
func introspect(ctx context.Context, source internal.ColumnSource, tables []string, outDir string, force bool) (int, error) {
	byTable, err := source.LoadColumns(ctx, tables)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	names := make([]string, 0, len(byTable))
	for table := range byTable {
		names = append(names, table)
	}
	sort.Strings(names)

	written := 0
	for _, table := range names {
		path := filepath.Join(outDir, table+".json")
		if _, err := os.Stat(path); err == nil && !force {
			zap.S().Warnw("record document exists; skipping", "path", path)
			continue
		}

		doc := nilability.RecordDocument{
			Name:    recordNameForTable(table),
			Table:   table,
			Columns: byTable[table],
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", table, err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

// recordNameForTable turns "blog_posts" into "BlogPost". Only regular English
// plurals are singularized; irregular ones ("people") are kept as written.
func recordNameForTable(table string) string {
	var b strings.Builder
	for _, part := range strings.Split(table, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return singularize(b.String())
}

func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "sses"), strings.HasSuffix(name, "xes"),
		strings.HasSuffix(name, "ches"), strings.HasSuffix(name, "shes"):
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "uses"):
		// "statuses" but not "houses" or "causes"
		if len(name) > 4 && !strings.ContainsRune("aeiouAEIOU", rune(name[len(name)-5])) {
			return strings.TrimSuffix(name, "es")
		}
		return strings.TrimSuffix(name, "s")
	case strings.HasSuffix(name, "ss"), strings.HasSuffix(name, "us"):
		return name
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}
