package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

// DuckDBColumnSource reads column nullability from a DuckDB database.
type DuckDBColumnSource struct {
	db      *sql.DB
	schema  string
	timeout time.Duration
}

// ValidateDuckDBConfig performs basic sanity checks on user-provided DuckDB configuration.
func ValidateDuckDBConfig(cfg nilability.DuckDBConfig) error {
	if cfg.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be > 0")
	}
	// DBPath may be empty (in-memory), so no strict check here
	return nil
}

// NewDuckDBColumnSource opens the database at cfg.DBPath (":memory:" when empty).
func NewDuckDBColumnSource(cfg nilability.DuckDBConfig) (*DuckDBColumnSource, error) {
	if err := ValidateDuckDBConfig(cfg); err != nil {
		return nil, err
	}
	dsn := cfg.DBPath
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return newDuckDBColumnSource(db, cfg.Schema, cfg.QueryTimeout), nil
}

func newDuckDBColumnSource(db *sql.DB, schema string, timeout time.Duration) *DuckDBColumnSource {
	if schema == "" {
		schema = "main"
	}
	return &DuckDBColumnSource{db: db, schema: schema, timeout: timeout}
}

func (s *DuckDBColumnSource) Describe() string {
	return "duckdb:" + s.schema
}

func (s *DuckDBColumnSource) Close() error {
	return s.db.Close()
}

func (s *DuckDBColumnSource) LoadColumns(ctx context.Context, tables []string) (map[string]map[string]nilability.ColumnMetadata, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(columnsQuery, "?"), s.schema)
	if err != nil {
		return nil, nilability.NewSourceUnavailableError(s.Describe(), fmt.Errorf("duckdb query information_schema.columns: %w", err))
	}
	defer rows.Close()

	collector := newColumnCollector(tables)
	for rows.Next() {
		var table, column, isNullable string
		if err := rows.Scan(&table, &column, &isNullable); err != nil {
			return nil, fmt.Errorf("duckdb scan column row: %w", err)
		}
		collector.add(table, column, isNullable)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("duckdb iterate column rows: %w", err)
	}

	zap.S().Infow("Loaded column metadata from duckdb", "schema", s.schema, "tables", len(collector.out))
	return collector.out, nil
}
