package internal

import "github.com/lychee-technology/nilability"

// Rule names reported in attribute decisions.
const (
	RuleNonNullColumn         = "non_null_column"
	RuleUnconditionalPresence = "unconditional_presence"
	RuleDefaultNilable        = "default_nilable"
)

// AttributeNullabilityResolver decides whether a scalar attribute may be absent.
//
// A NOT NULL column is checked first because it holds even when validations
// are skipped (bulk inserts, raw updates). An unconditional presence rule is
// checked second. Virtual attributes never have a column, so only their
// validations count.
type AttributeNullabilityResolver struct {
	schema      *SchemaConstraintInspector
	validations *ValidationRuleInspector
}

func NewAttributeNullabilityResolver(schema *SchemaConstraintInspector, validations *ValidationRuleInspector) *AttributeNullabilityResolver {
	return &AttributeNullabilityResolver{schema: schema, validations: validations}
}

// IsNilable resolves an attribute stored in a column of the same name.
func (r *AttributeNullabilityResolver) IsNilable(record nilability.RecordClass, attribute string) bool {
	return r.Explain(record, attribute, attribute).Result
}

// IsNilableColumn resolves an attribute backed by column.
func (r *AttributeNullabilityResolver) IsNilableColumn(record nilability.RecordClass, attribute, column string) bool {
	return r.Explain(record, attribute, column).Result
}

// Explain returns the decision and the rule that produced it. An empty column defaults to attribute.
func (r *AttributeNullabilityResolver) Explain(record nilability.RecordClass, attribute, column string) nilability.Decision {
	if column == "" {
		column = attribute
	}
	if r.schema.HasNonNullConstraint(record, column) {
		return nilability.Decision{Result: false, Rule: RuleNonNullColumn}
	}
	if r.validations.HasUnconditionalPresenceRule(record, attribute) {
		return nilability.Decision{Result: false, Rule: RuleUnconditionalPresence}
	}
	return nilability.Decision{Result: true, Rule: RuleDefaultNilable}
}
