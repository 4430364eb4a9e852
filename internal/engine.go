package internal

import (
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

type engine struct {
	attributes    *AttributeNullabilityResolver
	relationships *RelationshipRequirednessResolver
}

var _ nilability.Engine = (*engine)(nil)

// NewEngine wires both inspectors into the two resolvers.
func NewEngine(inference nilability.InferenceConfig, logger *zap.Logger) nilability.Engine {
	schema := NewSchemaConstraintInspector(logger)
	validations := NewValidationRuleInspector(logger)
	return &engine{
		attributes:    NewAttributeNullabilityResolver(schema, validations),
		relationships: NewRelationshipRequirednessResolver(schema, validations, inference.HasOneConsultsForeignKeyConstraint),
	}
}

func (e *engine) IsNilable(record nilability.RecordClass, attribute string) bool {
	return e.attributes.IsNilable(record, attribute)
}

func (e *engine) IsNilableColumn(record nilability.RecordClass, attribute, column string) bool {
	return e.attributes.IsNilableColumn(record, attribute, column)
}

func (e *engine) IsRequired(reflection nilability.RelationshipReflection) bool {
	return e.relationships.IsRequired(reflection)
}

func (e *engine) ExplainAttribute(record nilability.RecordClass, attribute, column string) nilability.Decision {
	return e.attributes.Explain(record, attribute, column)
}

func (e *engine) ExplainRelationship(reflection nilability.RelationshipReflection) nilability.Decision {
	return e.relationships.Explain(reflection)
}
