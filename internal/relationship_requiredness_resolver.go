package internal

import (
	"github.com/lychee-technology/nilability"
)

// Rule names reported in relationship decisions.
const (
	RuleExplicitRequired     = "explicit_required"
	RuleExplicitOption       = "explicit_option"
	RuleNonNullForeignKey    = "non_null_foreign_key"
	RuleForeignKeyPresence   = "foreign_key_presence"
	RuleRelationshipPresence = "relationship_presence"
	RuleRequiredByDefault    = "required_by_default"
	RuleDefaultOptional      = "default_optional"
	RuleNotToOne             = "not_to_one"
)

// requirednessRule is one link of a first-match-wins chain. A predicate
// returns matched=false to pass control to the next rule.
type requirednessRule struct {
	name  string
	check func(reflection nilability.RelationshipReflection) (required bool, matched bool)
}

// RelationshipRequirednessResolver decides whether a to-one relationship must be present.
type RelationshipRequirednessResolver struct {
	schema      *SchemaConstraintInspector
	validations *ValidationRuleInspector
	ownedChain  []requirednessRule
	owningChain []requirednessRule
}

// NewRelationshipRequirednessResolver builds the two rule chains. When
// hasOneConsultsForeignKey is false, owned-to-one relationships skip the
// NOT NULL foreign key check.
func NewRelationshipRequirednessResolver(schema *SchemaConstraintInspector, validations *ValidationRuleInspector, hasOneConsultsForeignKey bool) *RelationshipRequirednessResolver {
	r := &RelationshipRequirednessResolver{schema: schema, validations: validations}

	r.ownedChain = []requirednessRule{{name: RuleExplicitRequired, check: r.explicitRequired}}
	if hasOneConsultsForeignKey {
		r.ownedChain = append(r.ownedChain, requirednessRule{name: RuleNonNullForeignKey, check: r.nonNullForeignKey})
	}
	r.ownedChain = append(r.ownedChain,
		requirednessRule{name: RuleForeignKeyPresence, check: r.foreignKeyPresence},
		requirednessRule{name: RuleRelationshipPresence, check: r.relationshipPresence},
		requirednessRule{name: RuleDefaultOptional, check: alwaysOptional},
	)

	r.owningChain = []requirednessRule{
		{name: RuleExplicitOption, check: r.explicitOption},
		{name: RuleNonNullForeignKey, check: r.nonNullForeignKey},
		{name: RuleForeignKeyPresence, check: r.foreignKeyPresence},
		{name: RuleRelationshipPresence, check: r.relationshipPresence},
		{name: RuleRequiredByDefault, check: requiredByDefault},
	}
	return r
}

// IsRequired resolves the requiredness of reflection.
func (r *RelationshipRequirednessResolver) IsRequired(reflection nilability.RelationshipReflection) bool {
	return r.Explain(reflection).Result
}

// Explain returns the decision and the name of the first rule that matched.
func (r *RelationshipRequirednessResolver) Explain(reflection nilability.RelationshipReflection) nilability.Decision {
	var chain []requirednessRule
	switch reflection.Cardinality {
	case nilability.CardinalityOwnedToOne:
		chain = r.ownedChain
	case nilability.CardinalityOwningToOne:
		chain = r.owningChain
	default:
		return nilability.Decision{Result: false, Rule: RuleNotToOne}
	}
	for _, rule := range chain {
		if required, matched := rule.check(reflection); matched {
			return nilability.Decision{Result: required, Rule: rule.name}
		}
	}
	return nilability.Decision{Result: false, Rule: RuleDefaultOptional}
}

// RuleNames returns the chain consulted for cardinality, in evaluation order.
func (r *RelationshipRequirednessResolver) RuleNames(cardinality nilability.Cardinality) []string {
	var chain []requirednessRule
	switch cardinality {
	case nilability.CardinalityOwnedToOne:
		chain = r.ownedChain
	case nilability.CardinalityOwningToOne:
		chain = r.owningChain
	default:
		return []string{RuleNotToOne}
	}
	names := make([]string, len(chain))
	for i, rule := range chain {
		names[i] = rule.name
	}
	return names
}

func (r *RelationshipRequirednessResolver) explicitRequired(reflection nilability.RelationshipReflection) (bool, bool) {
	if reflection.ExplicitRequired != nil && *reflection.ExplicitRequired {
		return true, true
	}
	return false, false
}

func (r *RelationshipRequirednessResolver) explicitOption(reflection nilability.RelationshipReflection) (bool, bool) {
	optional := reflection.EffectiveOptional()
	if optional == nil {
		return false, false
	}
	return !*optional, true
}

func (r *RelationshipRequirednessResolver) nonNullForeignKey(reflection nilability.RelationshipReflection) (bool, bool) {
	if reflection.ForeignKey == "" {
		return false, false
	}
	if r.schema.HasNonNullConstraint(reflection.Owner, reflection.ForeignKey) {
		return true, true
	}
	return false, false
}

func (r *RelationshipRequirednessResolver) foreignKeyPresence(reflection nilability.RelationshipReflection) (bool, bool) {
	if reflection.ForeignKey == "" {
		return false, false
	}
	if r.validations.HasUnconditionalPresenceRule(reflection.Owner, reflection.ForeignKey) {
		return true, true
	}
	return false, false
}

func (r *RelationshipRequirednessResolver) relationshipPresence(reflection nilability.RelationshipReflection) (bool, bool) {
	if reflection.Name == "" {
		return false, false
	}
	if r.validations.HasUnconditionalPresenceRule(reflection.Owner, reflection.Name) {
		return true, true
	}
	return false, false
}

func requiredByDefault(reflection nilability.RelationshipReflection) (required bool, matched bool) {
	if reflection.Owner == nil {
		return false, true
	}
	defer func() {
		if recover() != nil {
			required, matched = false, true
		}
	}()
	return reflection.Owner.RelationshipsRequiredByDefault(), true
}

func alwaysOptional(nilability.RelationshipReflection) (bool, bool) {
	return false, true
}
