package internal

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

// MetadataCache holds one loaded snapshot of record classes for fast lookups.
type MetadataCache struct {
	mu sync.RWMutex

	snapshotID string
	records    map[string]nilability.RecordClass
	index      *ReflectionIndex
}

var _ nilability.RecordRegistry = (*MetadataCache)(nil)

// NewMetadataCache creates an empty cache with a fresh snapshot id.
func NewMetadataCache() *MetadataCache {
	return &MetadataCache{
		snapshotID: newSnapshotID(),
		records:    make(map[string]nilability.RecordClass),
		index:      NewReflectionIndex(nil),
	}
}

func newSnapshotID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SnapshotID identifies the load that produced this cache.
func (mc *MetadataCache) SnapshotID() string {
	return mc.snapshotID
}

// GetRecord retrieves a record class by name (thread-safe)
func (mc *MetadataCache) GetRecord(name string) (nilability.RecordClass, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	record, ok := mc.records[name]
	if !ok {
		zap.S().Warnw("record not found in cache", "record", name, "cache_size", len(mc.records))
		return nil, nilability.NewRecordNotFoundError(name)
	}
	return record, nil
}

// Relationships returns the reflections declared on a record (thread-safe)
func (mc *MetadataCache) Relationships(name string) ([]nilability.RelationshipReflection, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if _, ok := mc.records[name]; !ok {
		return nil, nilability.NewRecordNotFoundError(name)
	}
	return mc.index.Reflections(name), nil
}

// Reflect returns a single named relationship of a record (thread-safe)
func (mc *MetadataCache) Reflect(record, relationship string) (nilability.RelationshipReflection, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.index.Reflect(record, relationship)
}

// ListRecords returns all record names, sorted (thread-safe)
func (mc *MetadataCache) ListRecords() []string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	names := make([]string, 0, len(mc.records))
	for name := range mc.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MetadataLoader builds a MetadataCache from a document source and an optional column source.
type MetadataLoader struct {
	source  RecordSource
	columns ColumnSource
	cfg     nilability.MetadataConfig
}

// NewMetadataLoader creates a new metadata loader. columns may be nil.
func NewMetadataLoader(source RecordSource, columns ColumnSource, cfg nilability.MetadataConfig) *MetadataLoader {
	return &MetadataLoader{
		source:  source,
		columns: columns,
		cfg:     cfg,
	}
}

// LoadMetadata loads all metadata and returns a cache
func (ml *MetadataLoader) LoadMetadata(ctx context.Context) (*MetadataCache, error) {
	if ml.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ml.cfg.LoadTimeout)
		defer cancel()
	}

	// Step 1: Parse record documents
	defs, err := ml.loadDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load record documents: %w", err)
	}

	cache := NewMetadataCache()
	cache.mu.Lock()
	defer cache.mu.Unlock()

	for _, def := range defs {
		cache.records[def.RecordName] = def
	}

	// Step 2: Overlay live column metadata
	if ml.columns != nil {
		if err := ml.overlayColumns(ctx, cache, defs); err != nil {
			return nil, fmt.Errorf("failed to load column metadata: %w", err)
		}
	}

	// Step 3: Index relationships
	cache.index = NewReflectionIndex(defs)
	known := make(map[string]struct{}, len(cache.records))
	for name := range cache.records {
		known[name] = struct{}{}
	}
	for _, dangling := range cache.index.DanglingTargets(known) {
		zap.S().Warnw("relationship targets an unknown record", "relationship", dangling)
	}

	zap.S().Infow("Loaded record metadata", "source", ml.source.Describe(), "count", len(cache.records), "snapshot_id", cache.snapshotID)
	EmitSnapshotLoad(ctx, ml.source.Describe(), len(cache.records))
	return cache, nil
}

func (ml *MetadataLoader) loadDefinitions(ctx context.Context) ([]*nilability.RecordDefinition, error) {
	docs, err := ml.source.ReadDocuments(ctx)
	if err != nil {
		return nil, err
	}

	defaults := parseDefaults{relationshipsRequiredByDefault: ml.cfg.RelationshipsRequiredByDefault}
	defs := make([]*nilability.RecordDefinition, 0, len(docs))
	seen := make(map[string]string, len(docs))
	for _, raw := range docs {
		def, err := parseRecordDocument(raw, defaults)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[def.RecordName]; dup {
			return nil, nilability.NewMalformedMetadataError(raw.Source, fmt.Sprintf("record %q already defined in %s", def.RecordName, first), nil).WithRecord(def.RecordName)
		}
		seen[def.RecordName] = raw.Source
		defs = append(defs, def)
		zap.S().Debugw("Parsed record document", "record", def.RecordName, "source", raw.Source)
	}
	return defs, nil
}

// overlayColumns merges database columns into documented records by table.
// Database nullability wins over a column declared in the document.
// The cache lock must be held.
func (ml *MetadataLoader) overlayColumns(ctx context.Context, cache *MetadataCache, defs []*nilability.RecordDefinition) error {
	var tables []string
	if !ml.cfg.IncludeUndocumentedTables {
		tables = make([]string, 0, len(defs))
		for _, def := range defs {
			tables = append(tables, def.Table)
		}
	}

	byTable, err := ml.columns.LoadColumns(ctx, tables)
	if err != nil {
		return err
	}

	documented := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		documented[def.Table] = struct{}{}
		cols, ok := byTable[def.Table]
		if !ok {
			zap.S().Warnw("no table found for record", "record", def.RecordName, "table", def.Table, "source", ml.columns.Describe())
			continue
		}
		if def.ColumnMap == nil {
			def.ColumnMap = make(map[string]nilability.ColumnMetadata, len(cols))
		}
		for name, col := range cols {
			def.ColumnMap[name] = col
		}
	}

	if !ml.cfg.IncludeUndocumentedTables {
		return nil
	}
	for table, cols := range byTable {
		if _, ok := documented[table]; ok {
			continue
		}
		if _, clash := cache.records[table]; clash {
			zap.S().Warnw("undocumented table name clashes with a record; skipping", "table", table)
			continue
		}
		cache.records[table] = &nilability.TableRecord{
			Table:             table,
			ColumnMap:         cols,
			RequiredByDefault: ml.cfg.RelationshipsRequiredByDefault,
		}
		zap.S().Debugw("Registered undocumented table", "table", table, "columns", len(cols))
	}
	return nil
}
