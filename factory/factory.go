package factory

import (
	"context"
	"fmt"

	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/internal"
	"go.uber.org/zap"
)

// NewEngine creates the decision engine for config.Inference.
// The engine is stateless; a single instance may serve any number of goroutines.
func NewEngine(config *nilability.Config) nilability.Engine {
	if config == nil {
		config = nilability.DefaultConfig()
	}
	return internal.NewEngine(config.Inference, zap.L())
}

// Runtime bundles a loaded metadata snapshot with the engine and analyzer over it.
type Runtime struct {
	Engine     nilability.Engine
	Registry   nilability.RecordRegistry
	Analyzer   nilability.RecordAnalyzer
	SnapshotID string

	closers []func()
}

// Close releases database handles opened for column introspection.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// NewRuntimeWithConfig loads the metadata snapshot described by config and
// returns a ready Runtime. This is the primary way for external projects to
// analyze records.
//
// Usage:
//
//	import (
//	    "github.com/lychee-technology/nilability"
//	    "github.com/lychee-technology/nilability/factory"
//	)
//
//	config := nilability.DefaultConfig()
//	config.Metadata.SchemaDirectory = "./records"
//	rt, err := factory.NewRuntimeWithConfig(ctx, config)
//	if err != nil {
//	    // handle error
//	}
//	defer rt.Close()
//	report, err := rt.Analyzer.Analyze(ctx, "Post")
func NewRuntimeWithConfig(ctx context.Context, config *nilability.Config) (*Runtime, error) {
	if config == nil {
		config = nilability.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{}

	source, err := newRecordSource(ctx, config)
	if err != nil {
		return nil, err
	}

	columns, closeColumns, err := newColumnSource(ctx, config)
	if err != nil {
		return nil, err
	}
	if closeColumns != nil {
		rt.closers = append(rt.closers, closeColumns)
	}

	cache, err := internal.NewMetadataLoader(source, columns, config.Metadata).LoadMetadata(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	columnOpt, assocOpt := parseTypeOptions(config.Options)

	rt.Engine = NewEngine(config)
	rt.Registry = cache
	rt.SnapshotID = cache.SnapshotID()
	rt.Analyzer = internal.NewRecordAnalyzer(cache, rt.Engine, columnOpt, assocOpt, rt.SnapshotID)
	return rt, nil
}

func newRecordSource(ctx context.Context, config *nilability.Config) (internal.RecordSource, error) {
	switch config.Metadata.Source {
	case nilability.MetadataSourceS3:
		return internal.NewS3RecordSource(ctx, config.S3)
	default:
		return internal.NewFileRecordSource(config.Metadata.SchemaDirectory), nil
	}
}

func newColumnSource(ctx context.Context, config *nilability.Config) (internal.ColumnSource, func(), error) {
	switch config.Metadata.ColumnSource {
	case nilability.ColumnSourcePostgres:
		pool, err := internal.NewPostgresPool(ctx, config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := internal.PostgresHealthCheck(ctx, pool, config.Database.Timeout); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return internal.NewPostgresColumnSource(pool, config.Database.Schema), pool.Close, nil
	case nilability.ColumnSourceDuckDB:
		src, err := internal.NewDuckDBColumnSource(config.DuckDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open duckdb: %w", err)
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return nil, nil, nil
	}
}

// parseTypeOptions reads the signature options, logging and defaulting unknown values.
func parseTypeOptions(options map[string]string) (nilability.ColumnTypeOption, nilability.AssociationTypeOption) {
	columnOpt := nilability.ParseColumnTypeOption(options, func(value string, def nilability.ColumnTypeOption) {
		zap.S().Warnw("unknown option value; using default",
			"error", nilability.NewInvalidOptionError(nilability.OptionKeyColumnTypes, value), "default", def)
	})
	assocOpt := nilability.ParseAssociationTypeOption(options, func(value string, def nilability.AssociationTypeOption) {
		zap.S().Warnw("unknown option value; using default",
			"error", nilability.NewInvalidOptionError(nilability.OptionKeyAssociationTypes, value), "default", def)
	})
	return columnOpt, assocOpt
}
