package nilability

import (
	"sort"
	"strings"
)

// ColumnMetadata describes a storage column backing a record field.
type ColumnMetadata struct {
	Nullable bool `json:"nullable"`
}

// RecordClass is a read-only view of a persistence-mapped type.
type RecordClass interface {
	// Name returns the record class name, e.g. "Post".
	Name() string
	// Columns returns the column map keyed by column name. A nil map or an
	// error means column metadata is unavailable.
	Columns() (map[string]ColumnMetadata, error)
	// RelationshipsRequiredByDefault is the fallback policy for owning-side
	// relationships that carry no other requiredness signal.
	RelationshipsRequiredByDefault() bool
}

// ValidatorQuerier is the optional validation-rule query capability of a RecordClass.
type ValidatorQuerier interface {
	ValidatorsOn(field string) []ValidationRule
}

// RuleKind classifies a validation rule.
type RuleKind string

const (
	RuleKindPresence RuleKind = "presence"
	RuleKindOther    RuleKind = "other"
)

// ConditionKind is an option that gates a validation rule.
type ConditionKind string

const (
	ConditionIf     ConditionKind = "if"
	ConditionUnless ConditionKind = "unless"
	ConditionOn     ConditionKind = "on"
)

// ParseConditionKind maps a raw condition name onto a ConditionKind.
func ParseConditionKind(raw string) (ConditionKind, bool) {
	switch ConditionKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ConditionIf:
		return ConditionIf, true
	case ConditionUnless:
		return ConditionUnless, true
	case ConditionOn:
		return ConditionOn, true
	default:
		return "", false
	}
}

// ConditionSet is an immutable set of ConditionKind values.
type ConditionSet struct {
	kinds map[ConditionKind]struct{}
}

// NewConditionSet builds a set from the given kinds, ignoring duplicates.
func NewConditionSet(kinds ...ConditionKind) ConditionSet {
	if len(kinds) == 0 {
		return ConditionSet{}
	}
	set := ConditionSet{kinds: make(map[ConditionKind]struct{}, len(kinds))}
	for _, k := range kinds {
		set.kinds[k] = struct{}{}
	}
	return set
}

func (s ConditionSet) IsEmpty() bool {
	return len(s.kinds) == 0
}

func (s ConditionSet) Has(kind ConditionKind) bool {
	_, ok := s.kinds[kind]
	return ok
}

func (s ConditionSet) Len() int {
	return len(s.kinds)
}

// Kinds returns the members in sorted order.
func (s ConditionSet) Kinds() []ConditionKind {
	out := make([]ConditionKind, 0, len(s.kinds))
	for k := range s.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidationRule is a declarative validation attached to a record field.
type ValidationRule struct {
	Kind       RuleKind
	Conditions ConditionSet
}

// PresenceRule returns a presence rule gated by the given conditions.
func PresenceRule(conditions ...ConditionKind) ValidationRule {
	return ValidationRule{Kind: RuleKindPresence, Conditions: NewConditionSet(conditions...)}
}

// Unconditional reports whether the rule is a presence rule with no If/Unless/On gate.
func (r ValidationRule) Unconditional() bool {
	return r.Kind == RuleKindPresence && r.Conditions.IsEmpty()
}

// Cardinality is the shape of a relationship.
type Cardinality string

const (
	// CardinalityOwningToOne is a "belongs to" relationship: this record stores the foreign key.
	CardinalityOwningToOne Cardinality = "belongs_to"
	// CardinalityOwnedToOne is a "has one" relationship: the related record stores the foreign key.
	CardinalityOwnedToOne Cardinality = "has_one"
	// CardinalityToMany is a collection relationship. It is never required.
	CardinalityToMany Cardinality = "has_many"
)

// ParseCardinality accepts the snake_case names and a few common aliases.
func ParseCardinality(raw string) (Cardinality, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "belongs_to", "belongsto", "owning_to_one":
		return CardinalityOwningToOne, true
	case "has_one", "hasone", "owned_to_one":
		return CardinalityOwnedToOne, true
	case "has_many", "hasmany", "to_many", "has_and_belongs_to_many":
		return CardinalityToMany, true
	default:
		return "", false
	}
}

// IsToOne reports whether the cardinality is one of the two to-one shapes.
func (c Cardinality) IsToOne() bool {
	return c == CardinalityOwningToOne || c == CardinalityOwnedToOne
}

// RelationshipReflection describes a relationship declared on Owner.
type RelationshipReflection struct {
	Cardinality Cardinality
	Name        string
	ForeignKey  string
	ClassName   string
	// ExplicitRequired is set when a `required` option was configured.
	ExplicitRequired *bool
	// OptionalFlag is set when an `optional` option was configured.
	OptionalFlag *bool
	// Polymorphic is informational; requiredness never depends on it.
	Polymorphic bool
	Owner       RecordClass
}

// EffectiveOptional resolves the optional flag. An explicit `required`
// wins over `optional` and is inverted. Nil means nothing was configured.
func (r RelationshipReflection) EffectiveOptional() *bool {
	if r.ExplicitRequired != nil {
		optional := !*r.ExplicitRequired
		return &optional
	}
	if r.OptionalFlag != nil {
		optional := *r.OptionalFlag
		return &optional
	}
	return nil
}

// Bool returns a pointer to v, for filling the optional flags of a reflection.
func Bool(v bool) *bool {
	return &v
}

// Decision is a resolver result together with the name of the predicate that produced it.
type Decision struct {
	Result bool   `json:"result"`
	Rule   string `json:"rule"`
}
