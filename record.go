package nilability

import "sort"

// RecordDefinition is a snapshot-backed RecordClass. It also implements
// ValidatorQuerier. Treat it as read-only once it has been built.
type RecordDefinition struct {
	RecordName        string
	Table             string
	RequiredByDefault bool
	// ColumnMap is nil when column metadata is unavailable for the record.
	ColumnMap     map[string]ColumnMetadata
	Validations   map[string][]ValidationRule
	Relationships []RelationshipReflection
}

var (
	_ RecordClass      = (*RecordDefinition)(nil)
	_ ValidatorQuerier = (*RecordDefinition)(nil)
)

func (d *RecordDefinition) Name() string {
	return d.RecordName
}

func (d *RecordDefinition) Columns() (map[string]ColumnMetadata, error) {
	if d.ColumnMap == nil {
		return nil, NewColumnsUnavailableError(d.RecordName)
	}
	return d.ColumnMap, nil
}

func (d *RecordDefinition) RelationshipsRequiredByDefault() bool {
	return d.RequiredByDefault
}

func (d *RecordDefinition) ValidatorsOn(field string) []ValidationRule {
	return d.Validations[field]
}

// ColumnNames returns the column names in sorted order.
func (d *RecordDefinition) ColumnNames() []string {
	names := make([]string, 0, len(d.ColumnMap))
	for name := range d.ColumnMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidatedFields returns the names of fields with at least one rule, sorted.
func (d *RecordDefinition) ValidatedFields() []string {
	names := make([]string, 0, len(d.Validations))
	for name, rules := range d.Validations {
		if len(rules) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// TableRecord is a column-only RecordClass discovered from a database table
// with no snapshot document. It has no validation-rule query capability.
type TableRecord struct {
	Table             string
	ColumnMap         map[string]ColumnMetadata
	RequiredByDefault bool
}

var _ RecordClass = (*TableRecord)(nil)

func (t *TableRecord) Name() string {
	return t.Table
}

func (t *TableRecord) Columns() (map[string]ColumnMetadata, error) {
	if t.ColumnMap == nil {
		return nil, NewColumnsUnavailableError(t.Table)
	}
	return t.ColumnMap, nil
}

func (t *TableRecord) RelationshipsRequiredByDefault() bool {
	return t.RequiredByDefault
}
