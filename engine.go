package nilability

import "context"

// Engine decides attribute nilability and relationship requiredness.
// Implementations are stateless and safe for concurrent use.
type Engine interface {
	// IsNilable reports whether attribute may be absent on a valid, saved record.
	IsNilable(record RecordClass, attribute string) bool
	// IsNilableColumn is IsNilable for an attribute backed by a differently named column.
	IsNilableColumn(record RecordClass, attribute, column string) bool
	// IsRequired reports whether a to-one relationship must be present.
	IsRequired(reflection RelationshipReflection) bool

	ExplainAttribute(record RecordClass, attribute, column string) Decision
	ExplainRelationship(reflection RelationshipReflection) Decision
}

// RecordRegistry provides record lookup operations.
// Implementations can load records from files, object storage, or other sources.
type RecordRegistry interface {
	// GetRecord retrieves a record class by name
	GetRecord(name string) (RecordClass, error)
	// Relationships returns the reflections declared on a record
	Relationships(name string) ([]RelationshipReflection, error)
	// Reflect returns the relationship named name on record
	Reflect(record, name string) (RelationshipReflection, bool)
	// ListRecords returns all registered record names, sorted
	ListRecords() []string
}

// RecordAnalyzer applies an Engine to every field and relationship of a registered record.
type RecordAnalyzer interface {
	Analyze(ctx context.Context, name string) (*RecordReport, error)
}

// RecordReport is the per-record outcome of an analysis.
type RecordReport struct {
	Record        string               `json:"record"`
	SnapshotID    string               `json:"snapshotId,omitempty"`
	Attributes    []AttributeReport    `json:"attributes"`
	Relationships []RelationshipReport `json:"relationships"`
}

// AttributeReport describes the decision for one attribute.
type AttributeReport struct {
	Name    string `json:"name"`
	Column  string `json:"column"`
	Virtual bool   `json:"virtual"`
	Nilable bool   `json:"nilable"`
	Rule    string `json:"rule"`
	// Signature is "optional", "required" or "untyped" under the configured ColumnTypeOption.
	Signature string `json:"signature"`
}

// RelationshipReport describes the decision for one relationship.
type RelationshipReport struct {
	Name        string      `json:"name"`
	Cardinality Cardinality `json:"cardinality"`
	ClassName   string      `json:"className,omitempty"`
	Required    bool        `json:"required"`
	Rule        string      `json:"rule"`
	// Signature is "optional" or "required" under the configured AssociationTypeOption,
	// and "collection" for to-many relationships.
	Signature string `json:"signature"`
	// SupportsBuilders is false for polymorphic and to-many relationships.
	SupportsBuilders bool `json:"supportsBuilders"`
}

// Signature values used in reports.
const (
	SignatureOptional   = "optional"
	SignatureRequired   = "required"
	SignatureUntyped    = "untyped"
	SignatureCollection = "collection"
)
