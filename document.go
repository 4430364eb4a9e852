package nilability

import "encoding/json"

// RecordDocument is the on-disk form of one record in a metadata snapshot.
type RecordDocument struct {
	Name                           string                          `json:"name"`
	Table                          string                          `json:"table,omitempty"`
	RelationshipsRequiredByDefault *bool                           `json:"relationshipsRequiredByDefault,omitempty"`
	Columns                        map[string]ColumnMetadata       `json:"columns,omitempty"`
	Validations                    map[string][]ValidationDocument `json:"validations,omitempty"`
	Relationships                  []RelationshipDocument          `json:"relationships,omitempty"`
}

// ValidationDocument is the on-disk form of a ValidationRule.
type ValidationDocument struct {
	Kind       string   `json:"kind"`
	Conditions []string `json:"conditions,omitempty"`
}

// RelationshipDocument is the on-disk form of a RelationshipReflection.
type RelationshipDocument struct {
	Name        string `json:"name"`
	Cardinality string `json:"cardinality"`
	ForeignKey  string `json:"foreignKey,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Required    *bool  `json:"required,omitempty"`
	Optional    *bool  `json:"optional,omitempty"`
	Polymorphic bool   `json:"polymorphic,omitempty"`
}

// SnapshotBundle groups many record documents into one object, as stored in S3.
// Records stay undecoded so each one is schema-checked on its own.
type SnapshotBundle struct {
	Records []json.RawMessage `json:"records"`
}
