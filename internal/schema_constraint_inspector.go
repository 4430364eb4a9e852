package internal

import (
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

// SchemaConstraintInspector answers storage-level questions about record fields.
// Lookup failures are logged at debug level and treated as "no constraint".
type SchemaConstraintInspector struct {
	logger *zap.Logger
}

// NewSchemaConstraintInspector creates an inspector. A nil logger uses zap.L().
func NewSchemaConstraintInspector(logger *zap.Logger) *SchemaConstraintInspector {
	if logger == nil {
		logger = zap.L()
	}
	return &SchemaConstraintInspector{logger: logger}
}

// HasNonNullConstraint reports whether field is backed by a column that forbids NULL.
func (i *SchemaConstraintInspector) HasNonNullConstraint(record nilability.RecordClass, field string) bool {
	column, ok := i.lookupColumn(record, field)
	if !ok {
		return false
	}
	return !column.Nullable
}

// IsVirtual reports whether field has no backing column.
func (i *SchemaConstraintInspector) IsVirtual(record nilability.RecordClass, field string) bool {
	_, ok := i.lookupColumn(record, field)
	return !ok
}

func (i *SchemaConstraintInspector) lookupColumn(record nilability.RecordClass, field string) (column nilability.ColumnMetadata, found bool) {
	if record == nil {
		return nilability.ColumnMetadata{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Debug("column lookup panicked; treating field as unconstrained",
				zap.String("record", safeRecordName(record)),
				zap.String("field", field),
				zap.Any("panic", r))
			column, found = nilability.ColumnMetadata{}, false
		}
	}()

	columns, err := record.Columns()
	if err != nil {
		i.logger.Debug("column metadata unavailable; treating field as unconstrained",
			zap.String("record", safeRecordName(record)),
			zap.String("field", field),
			zap.Error(err))
		return nilability.ColumnMetadata{}, false
	}
	column, found = columns[field]
	return column, found
}

// safeRecordName returns record.Name() or "" if the provider panics.
func safeRecordName(record nilability.RecordClass) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return record.Name()
}
