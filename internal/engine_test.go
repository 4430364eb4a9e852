package internal

import (
	"testing"

	"github.com/lychee-technology/nilability"
	"github.com/stretchr/testify/assert"
)

func TestEngine_Delegates(t *testing.T) {
	engine := NewEngine(nilability.InferenceConfig{HasOneConsultsForeignKeyConstraint: true}, nil)
	post := newPostRecord()

	assert.False(t, engine.IsNilable(post, "author_id"))
	assert.True(t, engine.IsNilable(post, "body"))
	assert.False(t, engine.IsNilableColumn(post, "writer", "author_id"))
	assert.Equal(t, nilability.Decision{Result: false, Rule: RuleUnconditionalPresence}, engine.ExplainAttribute(post, "title", ""))

	author := post.Relationships[0]
	assert.True(t, engine.IsRequired(author))
	assert.Equal(t, nilability.Decision{Result: true, Rule: RuleNonNullForeignKey}, engine.ExplainRelationship(author))
}

func TestEngine_HasOneFlag(t *testing.T) {
	_, profile := newAuthorWithProfile(nil)

	assert.True(t, NewEngine(nilability.InferenceConfig{HasOneConsultsForeignKeyConstraint: true}, nil).IsRequired(profile))
	assert.False(t, NewEngine(nilability.InferenceConfig{HasOneConsultsForeignKeyConstraint: false}, nil).IsRequired(profile))
}
