package internal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

type columnQueryPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresColumnSource reads column nullability from information_schema.columns.
type PostgresColumnSource struct {
	pool   columnQueryPool
	schema string
}

func NewPostgresColumnSource(pool columnQueryPool, schema string) *PostgresColumnSource {
	if schema == "" {
		schema = "public"
	}
	return &PostgresColumnSource{pool: pool, schema: schema}
}

func (s *PostgresColumnSource) Describe() string {
	return "postgres:" + s.schema
}

func (s *PostgresColumnSource) LoadColumns(ctx context.Context, tables []string) (map[string]map[string]nilability.ColumnMetadata, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(columnsQuery, "$1"), s.schema)
	if err != nil {
		return nil, nilability.NewSourceUnavailableError(s.Describe(), fmt.Errorf("failed to query information_schema.columns: %w", err))
	}
	defer rows.Close()

	collector := newColumnCollector(tables)
	for rows.Next() {
		var table, column, isNullable string
		if err := rows.Scan(&table, &column, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		collector.add(table, column, isNullable)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}

	zap.S().Infow("Loaded column metadata from postgres", "schema", s.schema, "tables", len(collector.out))
	return collector.out, nil
}
