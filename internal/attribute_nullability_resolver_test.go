package internal

import (
	"testing"

	"github.com/lychee-technology/nilability"
	"github.com/stretchr/testify/assert"
)

func newTestAttributeResolver() *AttributeNullabilityResolver {
	return NewAttributeNullabilityResolver(NewSchemaConstraintInspector(nil), NewValidationRuleInspector(nil))
}

func TestAttributeNullabilityResolver_Post(t *testing.T) {
	resolver := newTestAttributeResolver()
	post := newPostRecord()

	tests := []struct {
		attribute string
		nilable   bool
		rule      string
	}{
		{attribute: "author_id", nilable: false, rule: RuleNonNullColumn},
		{attribute: "body", nilable: true, rule: RuleDefaultNilable},
		{attribute: "title", nilable: false, rule: RuleUnconditionalPresence},
		{attribute: "subject", nilable: true, rule: RuleDefaultNilable},
		{attribute: "summary", nilable: false, rule: RuleUnconditionalPresence},
		{attribute: "unknown", nilable: true, rule: RuleDefaultNilable},
	}

	for _, tt := range tests {
		t.Run(tt.attribute, func(t *testing.T) {
			assert.Equal(t, tt.nilable, resolver.IsNilable(post, tt.attribute))
			assert.Equal(t, nilability.Decision{Result: tt.nilable, Rule: tt.rule}, resolver.Explain(post, tt.attribute, ""))
		})
	}
}

func TestAttributeNullabilityResolver_ColumnOverride(t *testing.T) {
	resolver := newTestAttributeResolver()
	post := newPostRecord()

	// "writer" is stored in author_id.
	assert.False(t, resolver.IsNilableColumn(post, "writer", "author_id"))
	// The validation lookup uses the attribute name, not the column.
	assert.True(t, resolver.IsNilableColumn(post, "headline", "title"))
	assert.False(t, resolver.IsNilableColumn(post, "title", "body"))
}

func TestAttributeNullabilityResolver_ColumnBeatsValidation(t *testing.T) {
	resolver := newTestAttributeResolver()
	record := &nilability.RecordDefinition{
		RecordName: "Account",
		ColumnMap:  map[string]nilability.ColumnMetadata{"email": {Nullable: false}},
		Validations: map[string][]nilability.ValidationRule{
			"email": {nilability.PresenceRule()},
		},
	}

	decision := resolver.Explain(record, "email", "email")
	assert.False(t, decision.Result)
	assert.Equal(t, RuleNonNullColumn, decision.Rule)
}

func TestAttributeNullabilityResolver_FailOpen(t *testing.T) {
	resolver := newTestAttributeResolver()

	t.Run("nil record", func(t *testing.T) {
		assert.True(t, resolver.IsNilable(nil, "id"))
	})

	t.Run("unavailable columns still honor validations", func(t *testing.T) {
		record := &nilability.RecordDefinition{
			RecordName: "Draft",
			Validations: map[string][]nilability.ValidationRule{
				"title": {nilability.PresenceRule()},
			},
		}
		assert.False(t, resolver.IsNilable(record, "title"))
		assert.True(t, resolver.IsNilable(record, "body"))
	})

	t.Run("panicking provider", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.True(t, resolver.IsNilable(panickingRecord{}, "id"))
		})
	})

	t.Run("column-only table", func(t *testing.T) {
		table := &nilability.TableRecord{
			Table:     "events",
			ColumnMap: map[string]nilability.ColumnMetadata{"kind": {Nullable: false}, "payload": {Nullable: true}},
		}
		assert.False(t, resolver.IsNilable(table, "kind"))
		assert.True(t, resolver.IsNilable(table, "payload"))
	})
}
