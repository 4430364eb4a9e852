package internal

import (
	"context"
	"strings"

	"github.com/lychee-technology/nilability"
)

// ColumnSource introspects column nullability from a live database.
type ColumnSource interface {
	// LoadColumns returns table -> column -> metadata. A nil tables slice loads every table.
	LoadColumns(ctx context.Context, tables []string) (map[string]map[string]nilability.ColumnMetadata, error)
	Describe() string
}

// columnsQuery lists the columns of one schema. Both PostgreSQL and DuckDB
// expose information_schema.columns with is_nullable = 'YES' | 'NO'.
const columnsQuery = `SELECT table_name, column_name, is_nullable
FROM information_schema.columns
WHERE table_schema = %s
ORDER BY table_name, ordinal_position`

// columnCollector accumulates information_schema rows, keeping only wanted tables.
type columnCollector struct {
	wanted map[string]struct{}
	out    map[string]map[string]nilability.ColumnMetadata
}

func newColumnCollector(tables []string) *columnCollector {
	c := &columnCollector{out: make(map[string]map[string]nilability.ColumnMetadata)}
	if tables != nil {
		c.wanted = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			c.wanted[t] = struct{}{}
		}
	}
	return c
}

func (c *columnCollector) add(table, column, isNullable string) {
	if c.wanted != nil {
		if _, ok := c.wanted[table]; !ok {
			return
		}
	}
	cols, ok := c.out[table]
	if !ok {
		cols = make(map[string]nilability.ColumnMetadata)
		c.out[table] = cols
	}
	cols[column] = nilability.ColumnMetadata{Nullable: !strings.EqualFold(strings.TrimSpace(isNullable), "NO")}
}
